// StockTrackHub | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kingmumo/stocktrackhub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateTierAndExpiry(
		ctx context.Context,
		id int64,
		tier string,
		expiry *string,
	) error
	AdjustBalance(ctx context.Context, id int64, delta float64) error
	ListSubscribed(ctx context.Context) ([]User, error)
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, username, password_hash, role, tier,
	balance_usd, subscription_expiry, created_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, tier, balance_usd)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Tier,
		user.BalanceUSD,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE id = ?`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE email = ?`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE username = ?`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateTierAndExpiry(
	ctx context.Context,
	id int64,
	tier string,
	expiry *string,
) error {
	query := `
		UPDATE users
		SET tier = ?, subscription_expiry = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, tier, expiry, id)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update tier: %w", core.ErrNotFound)
	}

	return nil
}

// AdjustBalance applies a signed delta to the user's cash balance. A
// negative delta that would overdraw the account affects zero rows and
// surfaces as ErrInvalidInput.
func (r *repository) AdjustBalance(
	ctx context.Context,
	id int64,
	delta float64,
) error {
	query := `
		UPDATE users
		SET balance_usd = balance_usd + ?
		WHERE id = ? AND balance_usd + ? >= 0`

	result, err := r.db.ExecContext(ctx, query, delta, id, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	if rows == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf(
			"adjust balance: insufficient funds: %w",
			core.ErrInvalidInput,
		)
	}

	return nil
}

// ListSubscribed returns every user currently holding a paid tier. The
// expiration sweep inspects each row's expiry in Go because stored values
// are not guaranteed to parse.
func (r *repository) ListSubscribed(ctx context.Context) ([]User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE tier != ? ORDER BY id`,
		userColumns,
	)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, TierFree); err != nil {
		return nil, fmt.Errorf("list subscribed users: %w", err)
	}

	return users, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"1=1"}
	var args []any

	if params.Search != "" {
		conditions = append(
			conditions,
			"(email LIKE ? ESCAPE '\\' OR username LIKE ? ESCAPE '\\')",
		)
		pattern := "%" + escapeLike(params.Search) + "%"
		args = append(args, pattern, pattern)
	}

	if params.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, params.Role)
	}

	if params.Tier != "" {
		conditions = append(conditions, "tier = ?")
		args = append(args, params.Tier)
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userColumns, whereClause)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
