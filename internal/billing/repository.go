// StockTrackHub | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kingmumo/stocktrackhub/internal/core"
)

type PaymentRequestRepository interface {
	Create(ctx context.Context, request *PaymentRequest) error
	GetByID(ctx context.Context, id int64) (*PaymentRequest, error)
	ListPending(ctx context.Context) ([]PendingRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]PaymentRequest, error)
	SettleIfPending(ctx context.Context, id int64, status string) error
}

type paymentRequestRepository struct {
	db core.DBTX
}

func NewPaymentRequestRepository(db core.DBTX) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func (r *paymentRequestRepository) Create(
	ctx context.Context,
	request *PaymentRequest,
) error {
	query := `
		INSERT INTO payment_requests (user_id, amount, reference_number, status)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		request.UserID,
		request.Amount,
		request.ReferenceNumber,
		request.Status,
	)
	if err != nil {
		return fmt.Errorf("create payment request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create payment request: %w", err)
	}
	request.ID = id

	return nil
}

func (r *paymentRequestRepository) GetByID(
	ctx context.Context,
	id int64,
) (*PaymentRequest, error) {
	query := `
		SELECT id, user_id, amount, reference_number, status, submitted_at
		FROM payment_requests
		WHERE id = ?`

	var request PaymentRequest
	err := r.db.GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get payment request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment request: %w", err)
	}

	return &request, nil
}

func (r *paymentRequestRepository) ListPending(
	ctx context.Context,
) ([]PendingRequest, error) {
	query := `
		SELECT pr.id, pr.user_id, pr.amount, pr.reference_number,
		       pr.status, pr.submitted_at, u.username
		FROM payment_requests pr
		JOIN users u ON u.id = pr.user_id
		WHERE pr.status = ?
		ORDER BY pr.submitted_at ASC, pr.id ASC`

	var rows []PendingRequest
	err := r.db.SelectContext(ctx, &rows, query, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	return rows, nil
}

func (r *paymentRequestRepository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]PaymentRequest, error) {
	query := `
		SELECT id, user_id, amount, reference_number, status, submitted_at
		FROM payment_requests
		WHERE user_id = ?
		ORDER BY submitted_at DESC, id DESC`

	var rows []PaymentRequest
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}

	return rows, nil
}

// SettleIfPending moves a request out of Pending with a compare-and-set
// guard. Zero rows affected means the request either does not exist or
// was already settled; callers distinguish the two with a follow-up read.
func (r *paymentRequestRepository) SettleIfPending(
	ctx context.Context,
	id int64,
	status string,
) error {
	query := `
		UPDATE payment_requests
		SET status = ?
		WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, status, id, StatusPending)
	if err != nil {
		return fmt.Errorf("settle payment request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle payment request: %w", err)
	}

	if rows == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf(
			"settle payment request: already settled: %w",
			core.ErrInvalidTransition,
		)
	}

	return nil
}

type WalletRepository interface {
	Ensure(ctx context.Context, userID int64, initialBalance float64) error
	Get(ctx context.Context, userID int64) (*Wallet, error)
	Credit(ctx context.Context, userID int64, amount float64) error
}

type walletRepository struct {
	db core.DBTX
}

func NewWalletRepository(db core.DBTX) WalletRepository {
	return &walletRepository{db: db}
}

// Ensure creates the wallet row if it does not exist yet. Existing
// balances are never reset.
func (r *walletRepository) Ensure(
	ctx context.Context,
	userID int64,
	initialBalance float64,
) error {
	query := `
		INSERT INTO wallet (user_id, balance_usd)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, initialBalance); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}

	return nil
}

func (r *walletRepository) Get(
	ctx context.Context,
	userID int64,
) (*Wallet, error) {
	query := `SELECT user_id, balance_usd FROM wallet WHERE user_id = ?`

	var wallet Wallet
	err := r.db.GetContext(ctx, &wallet, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get wallet: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) Credit(
	ctx context.Context,
	userID int64,
	amount float64,
) error {
	query := `
		UPDATE wallet
		SET balance_usd = balance_usd + ?
		WHERE user_id = ?`

	result, err := r.db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("credit wallet: %w", core.ErrNotFound)
	}

	return nil
}
