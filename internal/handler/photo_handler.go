package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/auth"
	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/service"
)

// PhotoHandler handles photo upload, gallery, likes, deletion, and serving.
type PhotoHandler struct {
	photos        *service.PhotoService
	maxUploadSize int64
	logger        zerolog.Logger
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos *service.PhotoService, maxUploadSize int64, logger zerolog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photos:        photos,
		maxUploadSize: maxUploadSize,
		logger:        logger.With().Str("handler", "photo").Logger(),
	}
}

type toggleLikeResponse struct {
	Likes []int64 `json:"likes"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type listResponse struct {
	Photos []*domain.Photo `json:"photos"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// Upload handles POST /api/photos/upload (multipart form, field "photo").
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.ErrMissingFile.Error()})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, h.logger, domain.ErrMissingFile)
		return
	}
	defer file.Close()

	output, err := h.photos.Upload(r.Context(), service.UploadInput{
		OwnerID:  userID,
		Filename: header.Filename,
		Tags:     r.FormValue("tags"),
		File:     file,
		Size:     header.Size,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, output.Photo)
}

// List handles GET /api/photos?page=N&limit=M.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	// Unparseable values fall back to the defaults.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	output, err := h.photos.ListByOwner(r.Context(), service.ListInput{
		OwnerID: userID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Photos: output.Photos,
		Page:   output.Page,
		Limit:  output.Limit,
	})
}

// ToggleLike handles POST /api/photos/{id}/like.
func (h *PhotoHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	photoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, domain.ErrPhotoNotFound)
		return
	}

	output, err := h.photos.ToggleLike(r.Context(), service.ToggleLikeInput{
		PhotoID: photoID,
		UserID:  userID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleLikeResponse{Likes: output.Likes})
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	photoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, domain.ErrPhotoNotFound)
		return
	}

	if err := h.photos.Delete(r.Context(), service.DeleteInput{
		PhotoID: photoID,
		UserID:  userID,
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// Serve handles GET /uploads/{name}, streaming the stored binary.
func (h *PhotoHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.photos.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrPhotoNotFound.Error()})
			return
		}
		writeError(w, h.logger, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn().Err(err).Str("name", name).Msg("failed to stream photo")
	}
}
