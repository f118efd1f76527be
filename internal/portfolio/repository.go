// StockTrackHub | 2026
// repository.go

package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kingmumo/stocktrackhub/internal/core"
)

type Repository interface {
	CreateHolding(ctx context.Context, holding *Holding) error
	GetHolding(ctx context.Context, id int64) (*Holding, error)
	ListHoldings(ctx context.Context, userID int64) ([]Holding, error)
	DeleteHolding(ctx context.Context, id, userID int64) error

	AddToWatchlist(ctx context.Context, userID int64, symbol string) error
	RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error
	ListWatchlist(ctx context.Context, userID int64) ([]WatchlistEntry, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHolding(
	ctx context.Context,
	holding *Holding,
) error {
	query := `
		INSERT INTO portfolio (user_id, symbol, quantity, purchase_price)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		holding.UserID,
		holding.Symbol,
		holding.Quantity,
		holding.PurchasePrice,
	)
	if err != nil {
		return fmt.Errorf("create holding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create holding: %w", err)
	}
	holding.ID = id

	return nil
}

func (r *repository) GetHolding(
	ctx context.Context,
	id int64,
) (*Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, purchase_price, purchase_date
		FROM portfolio
		WHERE id = ?`

	var holding Holding
	err := r.db.GetContext(ctx, &holding, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get holding: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get holding: %w", err)
	}

	return &holding, nil
}

func (r *repository) ListHoldings(
	ctx context.Context,
	userID int64,
) ([]Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, purchase_price, purchase_date
		FROM portfolio
		WHERE user_id = ?
		ORDER BY purchase_date DESC, id DESC`

	var holdings []Holding
	if err := r.db.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	return holdings, nil
}

func (r *repository) DeleteHolding(
	ctx context.Context,
	id, userID int64,
) error {
	query := `DELETE FROM portfolio WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete holding: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) AddToWatchlist(
	ctx context.Context,
	userID int64,
	symbol string,
) error {
	query := `
		INSERT INTO watchlists (user_id, symbol)
		VALUES (?, ?)
		ON CONFLICT (user_id, symbol) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, symbol); err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}

	return nil
}

func (r *repository) RemoveFromWatchlist(
	ctx context.Context,
	userID int64,
	symbol string,
) error {
	query := `DELETE FROM watchlists WHERE user_id = ? AND symbol = ?`

	result, err := r.db.ExecContext(ctx, query, userID, symbol)
	if err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove from watchlist: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListWatchlist(
	ctx context.Context,
	userID int64,
) ([]WatchlistEntry, error) {
	query := `
		SELECT id, user_id, symbol, added_at
		FROM watchlists
		WHERE user_id = ?
		ORDER BY added_at DESC, id DESC`

	var entries []WatchlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	return entries, nil
}
