// StockTrackHub | 2026
// service.go

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kingmumo/stocktrackhub/internal/core"
	"github.com/kingmumo/stocktrackhub/internal/user"
)

type Service struct {
	db            *sqlx.DB
	requests      PaymentRequestRepository
	wallet        WalletRepository
	users         user.Repository
	walletOwnerID int64
	logger        *slog.Logger
}

func NewService(
	db *sqlx.DB,
	requests PaymentRequestRepository,
	wallet WalletRepository,
	users user.Repository,
	walletOwnerID int64,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:            db,
		requests:      requests,
		wallet:        wallet,
		users:         users,
		walletOwnerID: walletOwnerID,
		logger:        logger,
	}
}

func (s *Service) Submit(
	ctx context.Context,
	userID int64,
	req SubmitPaymentRequest,
) (*PaymentRequest, error) {
	if strings.TrimSpace(req.ReferenceNumber) == "" {
		return nil, fmt.Errorf(
			"submit payment: reference number required: %w",
			core.ErrInvalidInput,
		)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	request := &PaymentRequest{
		UserID:          userID,
		Amount:          req.Amount,
		ReferenceNumber: req.ReferenceNumber,
		Status:          StatusPending,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	// Read the row back so the caller sees the stored timestamp.
	stored, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment request submitted",
		"request_id", stored.ID,
		"user_id", userID,
		"amount", req.Amount,
	)

	return stored, nil
}

func (s *Service) GetRequest(
	ctx context.Context,
	id int64,
) (*PaymentRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *Service) ListPending(ctx context.Context) ([]PendingRequest, error) {
	return s.requests.ListPending(ctx)
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID int64,
) ([]PaymentRequest, error) {
	return s.requests.ListByUser(ctx, userID)
}

// Approve settles a pending request in one transaction: the status moves
// to Approved under a compare-and-set guard, the submitter is granted the
// tier their payment amount buys, and the platform fee lands in the
// operator wallet. A request that is already settled fails the guard and
// nothing else happens.
func (s *Service) Approve(
	ctx context.Context,
	requestID int64,
) (*ApprovalResponse, error) {
	var resp *ApprovalResponse

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		requests := NewPaymentRequestRepository(tx)
		wallets := NewWalletRepository(tx)
		users := user.NewRepository(tx)

		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}

		if err := requests.SettleIfPending(ctx, requestID, StatusApproved); err != nil {
			return err
		}

		tier := TierForAmount(request.Amount)
		expiry := expiryFor(tier)

		if err := users.UpdateTierAndExpiry(ctx, request.UserID, tier, expiry); err != nil {
			return err
		}

		fee := FeeUSD(request.Amount)
		if err := wallets.Credit(ctx, s.walletOwnerID, fee); err != nil {
			return err
		}

		request.Status = StatusApproved
		resp = &ApprovalResponse{
			Request: ToPaymentRequestResponse(request),
			Tier:    tier,
			Expiry:  expiry,
			FeeUSD:  fee,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment request approved",
		"request_id", requestID,
		"user_id", resp.Request.UserID,
		"tier", resp.Tier,
		"fee_usd", resp.FeeUSD,
	)

	return resp, nil
}

// Reject settles a pending request with no side effects on the submitter
// or the wallet.
func (s *Service) Reject(
	ctx context.Context,
	requestID int64,
) (*PaymentRequest, error) {
	var request *PaymentRequest

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		requests := NewPaymentRequestRepository(tx)

		var err error
		request, err = requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}

		if err := requests.SettleIfPending(ctx, requestID, StatusRejected); err != nil {
			return err
		}

		request.Status = StatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment request rejected",
		"request_id", requestID,
		"user_id", request.UserID,
	)

	return request, nil
}

// AssignTier grants a tier directly with a fresh thirty day window.
// Re-assigning the same tier simply restarts the window.
func (s *Service) AssignTier(
	ctx context.Context,
	userID int64,
	tier string,
) error {
	if !user.ValidTier(tier) {
		return fmt.Errorf(
			"assign tier: invalid tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	return s.users.UpdateTierAndExpiry(ctx, userID, tier, expiryFor(tier))
}

// SweepExpirations downgrades every paid-tier user whose subscription is
// no longer demonstrably live. A missing, unparsable, or past expiry all
// take the same path: back to Free with the expiry cleared. The reserved
// operator account is exempt. Running the sweep twice is a no-op the
// second time because downgraded users leave the candidate set.
func (s *Service) SweepExpirations(ctx context.Context) (int, error) {
	candidates, err := s.users.ListSubscribed(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	downgraded := 0

	for i := range candidates {
		u := &candidates[i]

		if u.ID == s.walletOwnerID {
			continue
		}

		expiry, parseErr := u.ExpiryTime()
		if parseErr == nil && !expiry.Before(today) {
			continue
		}

		if err := s.users.UpdateTierAndExpiry(ctx, u.ID, user.TierFree, nil); err != nil {
			return downgraded, fmt.Errorf("sweep downgrade user %d: %w", u.ID, err)
		}

		downgraded++

		s.logger.Info("subscription expired, downgraded to Free",
			"user_id", u.ID,
			"previous_tier", u.Tier,
			"stored_expiry", stringOr(u.SubscriptionExpiry, "<none>"),
		)
	}

	return downgraded, nil
}

func (s *Service) GetWallet(ctx context.Context) (*Wallet, error) {
	return s.wallet.Get(ctx, s.walletOwnerID)
}

// EnsureWallet seeds the operator wallet on first boot.
func (s *Service) EnsureWallet(
	ctx context.Context,
	initialBalance float64,
) error {
	return s.wallet.Ensure(ctx, s.walletOwnerID, initialBalance)
}

// Tiers returns the paid tier catalog sorted by price.
func (s *Service) Tiers() []TierInfo {
	tiers := make([]TierInfo, 0, len(TierPrices))
	for name, price := range TierPrices {
		tiers = append(tiers, TierInfo{Name: name, PriceKES: price})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].PriceKES < tiers[j].PriceKES
	})

	return tiers
}

func expiryFor(tier string) *string {
	if tier == user.TierFree {
		return nil
	}
	e := time.Now().UTC().AddDate(0, 0, subscriptionDays).Format(user.ExpiryLayout)
	return &e
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
