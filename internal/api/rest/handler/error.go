package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// errorResponse is the single error shape both transports expose.
type errorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := apperror.StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("handler: request failed", "error", err.Error())
	}
	respondJSON(w, log, status, errorResponse{Message: apperror.MessageOf(err), Status: status})
}

func respondJSON(w http.ResponseWriter, log *logger.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("handler: failed to encode response", "error", err.Error())
	}
}

// postView is the JSON projection of a post.
type postView struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewOfPost(post model.Post) postView {
	return postView{
		ID:        post.ID.String(),
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Creator:   post.CreatorID.String(),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func viewOfPosts(posts []model.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, viewOfPost(post))
	}
	return views
}
