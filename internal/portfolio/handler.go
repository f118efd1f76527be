// StockTrackHub | 2026
// handler.go

package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kingmumo/stocktrackhub/internal/core"
	"github.com/kingmumo/stocktrackhub/internal/market"
	"github.com/kingmumo/stocktrackhub/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetPortfolio)
		r.Post("/buy", h.Buy)
		r.Post("/holdings/{holdingID}/sell", h.Sell)
	})

	r.Route("/watchlist", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetWatchlist)
		r.Post("/", h.Watch)
		r.Delete("/{symbol}", h.Unwatch)
	})
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.GetPortfolio(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	holding, err := h.service.Buy(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "insufficient balance")
			return
		}
		h.writeError(w, err)
		return
	}

	core.Created(w, HoldingResponse{
		ID:            holding.ID,
		Symbol:        holding.Symbol,
		Name:          market.DisplayName(holding.Symbol),
		Quantity:      holding.Quantity,
		PurchasePrice: holding.PurchasePrice,
		PurchaseDate:  holding.PurchaseDate,
	})
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	holdingID, err := strconv.ParseInt(chi.URLParam(r, "holdingID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid holding id")
		return
	}

	proceeds, err := h.service.Sell(r.Context(), userID, holdingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, map[string]float64{"proceeds": proceeds})
}

func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.GetWatchlist(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.Watch(r.Context(), userID, req.Symbol); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Unwatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	symbol := chi.URLParam(r, "symbol")

	if err := h.service.Unwatch(r.Context(), userID, symbol); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrForbidden) {
		core.Forbidden(w, "paid subscription required")
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "resource")
		return
	}
	if errors.Is(err, market.ErrQuoteUnavailable) {
		core.JSONError(w, core.NewAppError(
			err,
			"market data temporarily unavailable",
			http.StatusBadGateway,
			"QUOTE_UNAVAILABLE",
		))
		return
	}
	core.InternalServerError(w, err)
}
