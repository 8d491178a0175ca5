// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"tagpress/internal/blog"
	"tagpress/internal/errs"
	"tagpress/internal/middleware"
	"tagpress/internal/models"
	"tagpress/internal/render"
)

const (
	// maxUploadSize caps a whole post form, uploads included.
	maxUploadSize = 50 << 20

	// maxMemory is how much of a multipart form is kept in memory before
	// spilling files to disk.
	maxMemory = 8 << 20
)

// Writer is the write side of the blog service.
type Writer interface {
	CreatePost(ctx context.Context, p *models.Principal, in blog.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, p *models.Principal, id uuid.UUID, in blog.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, p *models.Principal, id uuid.UUID) error
	CreateComment(ctx context.Context, p *models.Principal, postID uuid.UUID, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, p *models.Principal, id uuid.UUID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, p *models.Principal, id uuid.UUID) error
	CreateCategory(ctx context.Context, p *models.Principal, name, categorySlug string) (*models.Category, error)
	DeleteCategory(ctx context.Context, p *models.Principal, id uuid.UUID) error
}

// Author groups the endpoints that create, change and delete posts,
// comments and categories. Permission checks happen in the service; the
// handlers only pass the request's principal along.
type Author struct {
	blog Writer
}

// NewAuthor creates a new Author handler group.
func NewAuthor(writer Writer) *Author {
	return &Author{blog: writer}
}

// CreatePost handles the multipart post form.
func (a *Author) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := postInput(w, r)
	defer cleanup()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	post, err := a.blog.CreatePost(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	w.Header().Set("Location", "/blog/"+post.ID.String())
	render.JSON(w, http.StatusCreated, post)
}

// UpdatePost replaces a post's fields and tags from the multipart form.
func (a *Author) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "post")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	in, cleanup, err := postInput(w, r)
	defer cleanup()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	post, err := a.blog.UpdatePost(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

// DeletePost removes a post.
func (a *Author) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "post")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := a.blog.DeletePost(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateComment adds a comment to the post in the URL.
func (a *Author) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id", "post")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	fields, err := readFields(w, r, "content")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := a.blog.CreateComment(r.Context(), middleware.PrincipalFromCtx(r.Context()), postID, fields["content"])
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, c)
}

// UpdateComment replaces a comment's content.
func (a *Author) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "comment")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	fields, err := readFields(w, r, "content")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := a.blog.UpdateComment(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, fields["content"])
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, c)
}

// DeleteComment removes a comment.
func (a *Author) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "comment")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := a.blog.DeleteComment(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory adds a category from name and optional slug fields.
func (a *Author) CreateCategory(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, "name", "slug")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := a.blog.CreateCategory(r.Context(), middleware.PrincipalFromCtx(r.Context()), fields["name"], fields["slug"])
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, c)
}

// DeleteCategory removes a category. Its posts become uncategorized.
func (a *Author) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "category")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := a.blog.DeleteCategory(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postInput decodes the post form. The returned cleanup closes uploaded
// files and removes their temporary copies; it is never nil.
func postInput(w http.ResponseWriter, r *http.Request) (blog.PostInput, func(), error) {
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return blog.PostInput{}, cleanup, errs.Invalid("The upload is too large.")
		}
		return blog.PostInput{}, cleanup, errs.Invalid("The form could not be read.")
	}

	categoryID, ok := optionalID(r.FormValue("category"), models.NoCategorySlug)
	if !ok {
		return blog.PostInput{}, cleanup, errs.Invalid("Select a valid category.")
	}

	in := blog.PostInput{
		Title:      r.FormValue("title"),
		HookText:   r.FormValue("hook_text"),
		Content:    r.FormValue("content"),
		CategoryID: categoryID,
		TagsStr:    r.FormValue("tags_str"),
	}

	var err error
	var f multipart.File
	if in.HeadImage, f, err = formUpload(r, "head_image"); err != nil {
		return in, cleanup, err
	}
	if f != nil {
		closers = append(closers, f)
	}
	if in.File, f, err = formUpload(r, "file_upload"); err != nil {
		return in, cleanup, err
	}
	if f != nil {
		closers = append(closers, f)
	}
	return in, cleanup, nil
}

// formUpload opens an optional file field. A missing or empty file yields
// a nil upload.
func formUpload(r *http.Request, field string) (*blog.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errs.Invalid("The " + field + " upload could not be read.")
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil, nil
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		file.Close()
		return nil, nil, errs.Invalid("The " + field + " upload could not be read.")
	}

	return &blog.Upload{
		Name:        filepath.Base(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, file, nil
}

// sniffContentType detects the type of an upload from its first 512
// bytes. The client's declared type is ignored. The file is rewound.
func sniffContentType(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
