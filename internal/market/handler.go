// StockTrackHub | 2026
// handler.go

package market

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kingmumo/stocktrackhub/internal/core"
	"github.com/kingmumo/stocktrackhub/internal/middleware"
	"github.com/kingmumo/stocktrackhub/internal/user"
)

// TierSweeper downgrades lapsed subscriptions. The dashboard runs it on
// every load so the tier it renders is never stale.
type TierSweeper interface {
	SweepExpirations(ctx context.Context) (int, error)
}

type ProfileProvider interface {
	GetMe(ctx context.Context, userID int64) (*user.User, error)
}

// DashboardSymbols is the default quote strip shown on the dashboard.
var DashboardSymbols = []string{
	"RELIANCE.NS",
	"TCS.NS",
	"INFY.NS",
	"HDFCBANK.NS",
	"ICICIBANK.NS",
	"SBIN.NS",
	"EURUSD=X",
	"USDINR=X",
}

type DashboardResponse struct {
	User   user.UserResponse `json:"user"`
	Quotes []Quote           `json:"quotes"`
}

type Handler struct {
	service  *Service
	sweeper  TierSweeper
	profiles ProfileProvider
}

func NewHandler(
	service *Service,
	sweeper TierSweeper,
	profiles ProfileProvider,
) *Handler {
	return &Handler{
		service:  service,
		sweeper:  sweeper,
		profiles: profiles,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/assets", h.SearchAssets)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/quotes", h.GetQuotes)
		r.Get("/quotes/{symbol}", h.GetQuote)
		r.Get("/quotes/{symbol}/history", h.GetHistory)
	})
}

// Dashboard sweeps lapsed subscriptions first, then renders the profile
// with whatever tier survived the sweep.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if _, err := h.sweeper.SweepExpirations(r.Context()); err != nil {
		core.InternalServerError(w, err)
		return
	}

	profile, err := h.profiles.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	quotes := h.service.GetQuotes(r.Context(), DashboardSymbols)

	core.OK(w, DashboardResponse{
		User:   user.ToUserResponse(profile),
		Quotes: quotes,
	})
}

func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	core.OK(w, h.service.Search(query))
}

func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")

	symbols := DashboardSymbols
	if raw != "" {
		symbols = nil
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	core.OK(w, h.service.GetQuotes(r.Context(), symbols))
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := h.service.GetQuote(r.Context(), symbol)
	if err != nil {
		h.writeQuoteError(w, err)
		return
	}

	core.OK(w, quote)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	dataRange := r.URL.Query().Get("range")
	if dataRange == "" {
		dataRange = "1y"
	}

	candles, err := h.service.GetHistory(r.Context(), symbol, dataRange)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid range")
			return
		}
		h.writeQuoteError(w, err)
		return
	}

	core.OK(w, candles)
}

func (h *Handler) writeQuoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "symbol")
		return
	}
	if errors.Is(err, ErrQuoteUnavailable) {
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
