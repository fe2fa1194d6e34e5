package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogsite/service/internal/storage"
)

// memStore is an in-memory Store used by service and handler tests.
// The fail* fields inject database failures per operation.
type memStore struct {
	mu          sync.Mutex
	posts       map[int64]*Post
	nextID      int64
	now         time.Time
	createCalls int
	updateCalls int

	failCreate error
	failList   error
	failGet    error
	failUpdate error
	failDelete error
}

func newMemStore() *memStore {
	return &memStore{
		posts:  make(map[int64]*Post),
		nextID: 1,
		now:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) Create(ctx context.Context, title, description string, image *string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.failCreate != nil {
		return nil, m.failCreate
	}

	m.now = m.now.Add(time.Second)
	p := &Post{
		ID:          m.nextID,
		Title:       title,
		Description: description,
		Image:       image,
		CreatedAt:   m.now,
	}
	m.nextID++
	m.posts[p.ID] = p

	result := *p
	return &result, nil
}

func (m *memStore) List(ctx context.Context) ([]*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}

	result := []*Post{}
	for _, p := range m.posts {
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *p
	return &result, nil
}

func (m *memStore) Update(ctx context.Context, id int64, title, description string, image *string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Title = title
	p.Description = description
	p.Image = image

	result := *p
	return &result, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return nil, m.failDelete
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.posts, id)
	result := *p
	return &result, nil
}

// stubBlobs is an in-memory storage.Storage handing out sequential references.
type stubBlobs struct {
	n   int
	err error
}

func (s *stubBlobs) Save(ctx context.Context, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.n++
	return fmt.Sprintf("/uploads/blob-%d%s", s.n, filepath.Ext(originalName)), nil
}

func upload(name, content string) *Upload {
	return &Upload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		Filename:    name,
		ContentType: "image/png",
	}
}

func strPtr(s string) *string { return &s }

// captureLog redirects the standard logger into a buffer for one test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return buf
}

func TestService_CreateWithoutImageRoundTrip(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})

	created, err := svc.Create(context.Background(), CreateInput{Title: "Hello", Description: "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, "World", created.Description)
	assert.Nil(t, created.Image)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_CreateWithImage(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})

	created, err := svc.Create(context.Background(), CreateInput{
		Title:       "With image",
		Description: "desc",
		Image:       upload("photo.png", "fake-png-bytes"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Image)
	assert.Equal(t, "/uploads/blob-1.png", *created.Image)
}

func TestService_CreateUploadFailureWritesNoRow(t *testing.T) {
	store := newMemStore()
	blobs := &stubBlobs{err: fmt.Errorf("%w: connection reset", storage.ErrUpload)}
	svc := NewService(store, blobs)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:       "doomed",
		Description: "desc",
		Image:       upload("photo.png", "bytes"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUpload)
	assert.Equal(t, 0, store.createCalls)
}

func TestService_CreateInsertFailureAfterUpload(t *testing.T) {
	errConn := errors.New("connection refused")
	store := newMemStore()
	store.failCreate = errConn
	blobs := &stubBlobs{}
	svc := NewService(store, blobs)
	logged := captureLog(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:       "t",
		Description: "d",
		Image:       upload("photo.png", "bytes"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errConn)
	assert.NotErrorIs(t, err, storage.ErrUpload)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The blob was stored before the insert failed; it stays behind and
	// the orphan is only logged.
	assert.Equal(t, 1, blobs.n)
	assert.Equal(t, 1, store.createCalls)
	assert.Contains(t, logged.String(), "orphaned blob")
}

func TestService_UpdateRowVanishedAfterUploadLogsOrphan(t *testing.T) {
	store := newMemStore()
	blobs := &stubBlobs{}
	svc := NewService(store, blobs)

	created, err := svc.Create(context.Background(), CreateInput{Title: "T0", Description: "D0"})
	require.NoError(t, err)

	// Row disappears between the existence check and the write, as a
	// concurrent delete would make it.
	store.failUpdate = ErrNotFound
	logged := captureLog(t)

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{
		Image: upload("i1.jpg", "new-bytes"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, blobs.n)
	assert.Contains(t, logged.String(), "orphaned blob")
}

func TestService_UpdateTitleOnlyKeepsRest(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})

	created, err := svc.Create(context.Background(), CreateInput{
		Title:       "T0",
		Description: "D0",
		Image:       upload("i0.jpg", "bytes"),
	})
	require.NoError(t, err)
	i0 := *created.Image

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Title: strPtr("T1")})
	require.NoError(t, err)
	assert.Equal(t, "T1", updated.Title)
	assert.Equal(t, "D0", updated.Description)
	require.NotNil(t, updated.Image)
	assert.Equal(t, i0, *updated.Image)
}

func TestService_UpdateReplacesImage(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})

	created, err := svc.Create(context.Background(), CreateInput{
		Title:       "T0",
		Description: "D0",
		Image:       upload("i0.jpg", "bytes"),
	})
	require.NoError(t, err)
	i0 := *created.Image

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Image: upload("i1.jpg", "new-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "T0", updated.Title)
	assert.Equal(t, "D0", updated.Description)
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, i0, *updated.Image)
}

func TestService_UpdateMissingPostSkipsUpload(t *testing.T) {
	store := newMemStore()
	blobs := &stubBlobs{}
	svc := NewService(store, blobs)

	_, err := svc.Update(context.Background(), 9999, UpdateInput{
		Title: strPtr("new"),
		Image: upload("i.jpg", "bytes"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, blobs.n)
	assert.Equal(t, 0, store.updateCalls)
}

func TestService_ListNewestFirst(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})

	var ids []int64
	for _, title := range []string{"P1", "P2", "P3"} {
		p, err := svc.Create(context.Background(), CreateInput{Title: title, Description: "d"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, ids[2], posts[0].ID)
	assert.Equal(t, ids[1], posts[1].ID)
	assert.Equal(t, ids[0], posts[2].ID)
}

func TestService_NotFoundConsistency(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, 42, UpdateInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteIsFinal(t *testing.T) {
	svc := NewService(newMemStore(), &stubBlobs{})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Title: "gone", Description: "soon"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
