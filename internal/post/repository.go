// Package post manages blog posts and their persistence.
package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Post represents a published blog post. Image is nil when the post was
// created without an upload; once set it points at a stored blob.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// Repository handles all post database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new post and returns the created record.
func (r *Repository) Create(ctx context.Context, title, description string, image *string) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (title, description, image)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, description, image, created_at`,
		title, description, image,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, image, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetByID fetches a post by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, image, created_at
		 FROM posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return p, nil
}

// Update replaces title, description, and image of an existing post and
// returns the updated record. Values are full replacements; resolving
// "keep the existing value" is the service's job.
func (r *Repository) Update(ctx context.Context, id int64, title, description string, image *string) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRow(ctx,
		`UPDATE posts SET title = $1, description = $2, image = $3
		 WHERE id = $4
		 RETURNING id, title, description, image, created_at`,
		title, description, image, id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes a post and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, id int64) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRow(ctx,
		`DELETE FROM posts WHERE id = $1
		 RETURNING id, title, description, image, created_at`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}
