// Package httpapi exposes the cart engine over HTTP.
//
// The API is a thin translation layer: decode the request, call one engine
// operation, encode the result. All cart semantics live in internal/engine.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/engine"
)

// Server handles the HTTP surface of one engine.
type Server struct {
	engine  *engine.Engine
	catalog catalog.Catalog
}

// New creates a server for the given engine and catalog.
func New(e *engine.Engine, c catalog.Catalog) *Server {
	return &Server{engine: e, catalog: c}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/products", s.handleProducts)

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", s.handleCreateCart)
		r.Route("/{cartID}", func(r chi.Router) {
			r.Get("/", s.handleGetCart)
			r.Get("/items", s.handleGetItems)
			r.Post("/items", s.handleAddItem)
			r.Delete("/items/{productID}", s.handleRemoveItem)
			r.Put("/items/{productID}", s.handleUpdateQuantity)
			r.Post("/checkout", s.handleCheckout)
		})
	})

	return r
}

type createCartRequest struct {
	UserID string `json:"userId"`
}

type createCartResponse struct {
	CartID string `json:"cartId"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type itemsResponse struct {
	Items any `json:"items"`
}

type checkoutResponse struct {
	Total float64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Products())
}

func (s *Server) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "userId is required"})
		return
	}

	cartID, err := s.engine.InitializeCart(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCartResponse{CartID: cartID})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	o, err := s.engine.Order(chi.URLParam(r, "cartID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.CartContents(chi.URLParam(r, "cartID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productId is required"})
		return
	}

	items, err := s.engine.AddItem(r.Context(), chi.URLParam(r, "cartID"), req.ProductID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity is required"})
		return
	}

	items, err := s.engine.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	total, err := s.engine.Checkout(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{Total: total})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such cart"})
	case errors.Is(err, engine.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "cart already exists"})
	case errors.Is(err, engine.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "shutting down"})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
