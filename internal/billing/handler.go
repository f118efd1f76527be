// StockTrackHub | 2026
// handler.go

package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kingmumo/stocktrackhub/internal/core"
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
	r.Get("/tiers", h.GetTiers)

	r.Route("/billing", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/requests", h.SubmitRequest)
		r.Get("/requests", h.ListMyRequests)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/billing", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/requests", h.ListPendingRequests)
		r.Post("/requests/{requestID}/approve", h.ApproveRequest)
		r.Post("/requests/{requestID}/reject", h.RejectRequest)
		r.Post("/sweep", h.Sweep)
	})

	r.Route("/admin/wallet", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.GetWallet)
	})
}

func (h *Handler) GetTiers(w http.ResponseWriter, r *http.Request) {
	core.OK(w, TiersResponse{Tiers: h.service.Tiers()})
}

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToPaymentRequestResponse(request))
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	rows, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPaymentRequestResponses(rows))
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListPending(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPendingRequestResponses(rows))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseRequestID(r)
	if err != nil {
		core.BadRequest(w, "invalid request id")
		return
	}

	resp, err := h.service.Approve(r.Context(), requestID)
	if err != nil {
		h.writeSettleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseRequestID(r)
	if err != nil {
		core.BadRequest(w, "invalid request id")
		return
	}

	request, err := h.service.Reject(r.Context(), requestID)
	if err != nil {
		h.writeSettleError(w, err)
		return
	}

	core.OK(w, ToPaymentRequestResponse(request))
}

func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	downgraded, err := h.service.SweepExpirations(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SweepResponse{Downgraded: downgraded})
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.service.GetWallet(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "wallet")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, WalletResponse{
		UserID:     wallet.UserID,
		BalanceUSD: wallet.BalanceUSD,
	})
}

func (h *Handler) writeSettleError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "payment request")
		return
	}
	if errors.Is(err, core.ErrInvalidTransition) {
		core.JSONError(
			w,
			core.InvalidTransitionError("payment request already settled"),
		)
		return
	}
	core.InternalServerError(w, err)
}

func parseRequestID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
}
