package post

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blogsite/service/internal/response"
	"github.com/blogsite/service/internal/storage"
)

// maxUploadMemory bounds the in-memory portion of a parsed multipart body;
// larger files spill to temp storage.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for post endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new post Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts all post endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// Create godoc
//
//	@Summary		Create a post
//	@Description	Creates a post from multipart form fields; the image file is optional.
//	@Tags			posts
//	@Accept			mpfd
//	@Produce		json
//	@Param			title		formData	string	true	"Post title"
//	@Param			description	formData	string	true	"Post description"
//	@Param			image		formData	file	false	"Image file"
//	@Success		200	{object}	Post
//	@Failure		400	{object}	response.Body
//	@Failure		500	{object}	response.Body
//	@Router			/posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	if title == "" || description == "" {
		response.BadRequest(w, "title and description are required")
		return
	}

	in := CreateInput{Title: title, Description: description}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = &Upload{
			Reader:      file,
			Size:        header.Size,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		response.BadRequest(w, "invalid image file")
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		log.Printf("POST /api/posts error: %v", err)
		if errors.Is(err, storage.ErrUpload) {
			response.InternalError(w, "Image upload failed", err)
			return
		}
		response.InternalError(w, "Failed to create post", err)
		return
	}

	response.OK(w, p)
}

// List godoc
//
//	@Summary		List posts
//	@Description	Returns all posts, newest first.
//	@Tags			posts
//	@Produce		json
//	@Success		200	{array}		Post
//	@Failure		500	{object}	response.Body
//	@Router			/posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("GET /api/posts error: %v", err)
		response.InternalError(w, "Failed to fetch posts", err)
		return
	}
	response.OK(w, posts)
}

// Get godoc
//
//	@Summary		Get a post
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	Post
//	@Failure		404	{object}	response.Body
//	@Failure		500	{object}	response.Body
//	@Router			/posts/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		log.Printf("GET /api/posts/%d error: %v", id, err)
		response.InternalError(w, "Failed to fetch post", err)
		return
	}

	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update a post
//	@Description	Updates a post from multipart form fields. Omitted fields keep their current value; the image is replaced only when a new file is attached.
//	@Tags			posts
//	@Accept			mpfd
//	@Produce		json
//	@Param			id			path		int		true	"Post ID"
//	@Param			title		formData	string	false	"New title"
//	@Param			description	formData	string	false	"New description"
//	@Param			image		formData	file	false	"New image file"
//	@Success		200	{object}	Post
//	@Failure		400	{object}	response.Body
//	@Failure		404	{object}	response.Body
//	@Failure		500	{object}	response.Body
//	@Router			/posts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	in := UpdateInput{}
	// Empty form values mean "leave unchanged".
	if v := r.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := r.FormValue("description"); v != "" {
		in.Description = &v
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = &Upload{
			Reader:      file,
			Size:        header.Size,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		response.BadRequest(w, "invalid image file")
		return
	}

	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		log.Printf("PUT /api/posts/%d error: %v", id, err)
		if errors.Is(err, storage.ErrUpload) {
			response.InternalError(w, "Image upload failed", err)
			return
		}
		response.InternalError(w, "Failed to update post", err)
		return
	}

	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	response.Body
//	@Failure		404	{object}	response.Body
//	@Failure		500	{object}	response.Body
//	@Router			/posts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		log.Printf("DELETE /api/posts/%d error: %v", id, err)
		response.InternalError(w, "Failed to delete post", err)
		return
	}

	response.Message(w, http.StatusOK, "Post deleted")
}

// postID parses the {id} route parameter, writing a 400 on garbage input.
func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return 0, false
	}
	return id, true
}
