package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// Image serves stored post images.
type Image struct {
	storage model.Storage
	logger  *logger.Logger
}

// NewImage creates a new Image handler.
func NewImage(storage model.Storage, logger *logger.Logger) *Image {
	return &Image{storage: storage, logger: logger}
}

// Serve streams the image stored under the requested key.
func (h *Image) Serve(w http.ResponseWriter, r *http.Request) {
	key := "images/" + chi.URLParam(r, "*")

	exists, err := h.storage.Exists(r.Context(), key)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if !exists {
		respondError(w, h.logger, apperror.NewNotFound("can't find image"))
		return
	}

	obj, err := h.storage.Download(r.Context(), key)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	defer obj.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Error("Image handler: failed to stream image", "key", key, "error", err.Error())
	}
}
