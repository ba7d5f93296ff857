package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/catalog"
)

// CatalogStore is implemented by catalog.Repo and by fakes in tests.
type CatalogStore interface {
	List(ctx context.Context) ([]catalog.Card, error)
	Create(ctx context.Context, c catalog.Card) (catalog.Card, error)
	Patch(ctx context.Context, id string, fields map[string]any) (catalog.Card, error)
	AddReview(ctx context.Context, productID string, rev catalog.Review) (float64, []catalog.Review, error)
}

type CatalogHandler struct {
	Store CatalogStore
	Log   *zap.SugaredLogger
}

type createCardReq struct {
	Titre            string                   `json:"titre"`
	SousTitre        string                   `json:"sous_titre"`
	Description      string                   `json:"description"`
	Image            string                   `json:"image"`
	Images           []string                 `json:"images"`
	Caracteristiques []string                 `json:"caracteristiques"`
	ProduitsDerives  []catalog.DerivedProduct `json:"produits_derives"`
	Prix             float64                  `json:"prix"`
	Stock            int                      `json:"stock"`
	StockReduc       int                      `json:"stock_reduc"`
	Nouveau          *bool                    `json:"nouveau"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/api/cards", h.list)
	r.Post("/api/cards", h.create)
	r.Patch("/api/cards", h.patch)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cards, err := h.Store.List(ctx)
	if err != nil {
		h.Log.Errorw("list cards", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": cards})
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Titre == "" {
		writeError(w, http.StatusBadRequest, "titre is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	card := catalog.Card{
		Titre:            req.Titre,
		SousTitre:        req.SousTitre,
		Description:      req.Description,
		Image:            req.Image,
		Images:           req.Images,
		Caracteristiques: req.Caracteristiques,
		ProduitsDerives:  req.ProduitsDerives,
		Prix:             req.Prix,
		Stock:            req.Stock,
		StockReduc:       req.StockReduc,
		Nouveau:          true,
	}
	if req.Nouveau != nil {
		card.Nouveau = *req.Nouveau
	}

	created, err := h.Store.Create(ctx, card)
	if err != nil {
		h.Log.Errorw("create card", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (h *CatalogHandler) patch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	patched, err := h.Store.Patch(ctx, id, fields)
	if err != nil {
		h.Log.Errorw("patch card", "id", id, "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": patched})
}
