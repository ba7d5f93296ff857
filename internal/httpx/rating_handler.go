package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/auth"
	"github.com/boutique-cartes/backend/internal/catalog"
)

type RatingHandler struct {
	Store CatalogStore
	Auth  auth.Verifier
	Log   *zap.SugaredLogger
}

type rateProductReq struct {
	Rating    *float64 `json:"rating"`
	Comment   string   `json:"comment"`
	ProductID string   `json:"productId"`
}

func (h *RatingHandler) Register(r *chi.Mux) {
	r.Post("/api/rate-product", h.rateProduct)
}

func (h *RatingHandler) rateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	userID, err := h.Auth.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req rateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Rating == nil || *req.Rating < 1 || *req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	avg, reviews, err := h.Store.AddReview(ctx, req.ProductID, catalog.Review{
		UserID:  userID,
		Rating:  *req.Rating,
		Comment: req.Comment,
	})
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
		return
	case errors.Is(err, catalog.ErrAlreadyVoted):
		writeError(w, http.StatusBadRequest, "already voted")
		return
	case err != nil:
		h.Log.Errorw("rate product", "product_id", req.ProductID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"newAverage": avg, "reviews": reviews})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
