package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boutique-cartes/backend/internal/mail"
	"github.com/boutique-cartes/backend/internal/orders"
)

type RequestsHandler struct {
	Repo OrderStore
	Mail mail.Sender
	Log  *zap.SugaredLogger
}

type specialRequestReq struct {
	Email        string `json:"email"`
	ProductTitle string `json:"productTitle"`
	DeliveryTime string `json:"deliveryTime"`
}

type sendEmailReq struct {
	Email string        `json:"email"`
	Items []orders.Item `json:"items"`
}

type sendSpecialRequestEmailReq struct {
	Email    string   `json:"email"`
	Products []string `json:"products"`
}

func (h *RequestsHandler) Register(r *chi.Mux) {
	r.Get("/api/specialRequests", h.listSpecialRequests)
	r.Post("/api/specialRequests", h.createSpecialRequest)
	r.Post("/api/sendEmail", h.sendEmail)
	r.Post("/api/sendSpecialRequestEmail", h.sendSpecialRequestEmail)
}

// listSpecialRequests doubles as the buyer scan: with ?produit= the
// response lists buyers of that product instead of the raw requests.
func (h *RequestsHandler) listSpecialRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if title := r.URL.Query().Get("produit"); title != "" {
		buyers, err := h.Repo.BuyersForProduct(ctx, title)
		if err != nil {
			h.Log.Errorw("buyer scan", "produit", title, "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": buyers})
		return
	}

	reqs, err := h.Repo.ListSpecialRequests(ctx)
	if err != nil {
		h.Log.Errorw("list special requests", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reqs})
}

func (h *RequestsHandler) createSpecialRequest(w http.ResponseWriter, r *http.Request) {
	var req specialRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.ProductTitle == "" {
		writeError(w, http.StatusBadRequest, "email and productTitle are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Repo.CreateSpecialRequest(ctx, orders.SpecialRequest{
		Email:        req.Email,
		ProductTitle: req.ProductTitle,
		DeliveryTime: req.DeliveryTime,
	})
	if err != nil {
		h.Log.Errorw("create special request", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *RequestsHandler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "email and items are required")
		return
	}

	subject, html, err := mail.OrderConfirmation(req.Items)
	if err == nil {
		err = h.Mail.Send(mail.Message{To: req.Email, Subject: subject, HTML: html})
	}
	if err != nil {
		h.Log.Errorw("send email", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RequestsHandler) sendSpecialRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req sendSpecialRequestEmailReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "email and products are required")
		return
	}

	subject, text := mail.SpecialRequestBody(req.Products)
	if err := h.Mail.Send(mail.Message{To: req.Email, Subject: subject, Text: text}); err != nil {
		h.Log.Errorw("send special request email", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
