package post

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/blogsite/service/internal/storage"
)

// Store is the persistence surface the service depends on. *Repository
// implements it; tests substitute an in-memory version.
type Store interface {
	Create(ctx context.Context, title, description string, image *string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	Update(ctx context.Context, id int64, title, description string, image *string) (*Post, error)
	Delete(ctx context.Context, id int64) (*Post, error)
}

// Upload carries an image payload out of a multipart request.
type Upload struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// CreateInput holds the fields of a create request. Image is nil when no
// file was attached.
type CreateInput struct {
	Title       string
	Description string
	Image       *Upload
}

// UpdateInput holds the fields of an update request. Nil fields mean
// "leave unchanged".
type UpdateInput struct {
	Title       *string
	Description *string
	Image       *Upload
}

// Service orchestrates post persistence and image upload. For every
// mutating request the image reference is resolved first — the upload
// either confirms durability or fails the request — and only then is the
// database row written.
type Service struct {
	store Store
	blobs storage.Storage
}

// NewService creates a new post Service.
func NewService(store Store, blobs storage.Storage) *Service {
	return &Service{store: store, blobs: blobs}
}

// Create stores the image, if any, then inserts the post. An upload
// failure aborts the request before any row is written.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Post, error) {
	image, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	p, err := s.store.Create(ctx, in.Title, in.Description, image)
	if err != nil {
		if image != nil {
			// Blob is already durable; the row write failed after it.
			// No compensating delete — orphans are an accepted cost.
			log.Printf("post create failed after upload, orphaned blob %s", *image)
		}
		return nil, err
	}
	return p, nil
}

// List returns all posts, newest first.
func (s *Service) List(ctx context.Context) ([]*Post, error) {
	return s.store.List(ctx)
}

// Get returns a post by id.
func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	return s.store.GetByID(ctx, id)
}

// Update fetches the existing post, resolves the final field values
// (provided value wins, otherwise the existing one stays), and writes the
// row with full replacement values. A missing post short-circuits before
// any upload, so a bad id never orphans a blob. An existing image is kept
// unless a new file replaces it; it is never cleared here.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Post, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := existing.Title
	if in.Title != nil {
		title = *in.Title
	}
	description := existing.Description
	if in.Description != nil {
		description = *in.Description
	}

	image := existing.Image
	if in.Image != nil {
		ref, err := s.resolveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	p, err := s.store.Update(ctx, id, title, description, image)
	if err != nil {
		// Covers the row vanishing between GetByID and Update too: the
		// fresh blob is orphaned either way and only ever logged.
		if in.Image != nil && image != nil {
			log.Printf("post update failed after upload, orphaned blob %s", *image)
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a post and returns the deleted record. The stored blob,
// if any, outlives the row.
func (s *Service) Delete(ctx context.Context, id int64) (*Post, error) {
	return s.store.Delete(ctx, id)
}

// resolveImage turns an optional upload into a durable reference. It
// returns only once the backend has confirmed the blob, which keeps the
// upload strictly ordered before the row write.
func (s *Service) resolveImage(ctx context.Context, up *Upload) (*string, error) {
	if up == nil {
		return nil, nil
	}
	ref, err := s.blobs.Save(ctx, up.Filename, up.Reader, up.Size, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("resolve image: %w", err)
	}
	return &ref, nil
}
