// StockTrackHub | 2026
// repository_test.go

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kingmumo/stocktrackhub/internal/core"
)

func newTestRepo(t *testing.T) (Repository, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := core.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return NewRepository(db), db
}

func createUser(t *testing.T, repo Repository, email, username string) *User {
	t.Helper()

	u := &User{
		Email:        email,
		Username:     username,
		PasswordHash: "x",
		Role:         RoleUser,
		Tier:         TierFree,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	return u
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created := createUser(t, repo, "alice@test.local", "alice")
	if created.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != "alice@test.local" || byID.Tier != TierFree {
		t.Errorf("got %+v, want alice on Free", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@test.local")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetByEmail ID = %d, want %d", byEmail.ID, created.ID)
	}

	byUsername, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if byUsername.ID != created.ID {
		t.Errorf("GetByUsername ID = %d, want %d", byUsername.ID, created.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 404); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@test.local"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByEmail: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByUsername: expected ErrNotFound, got %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	createUser(t, repo, "bob@test.local", "bob")

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"duplicate email", "bob@test.local", "bob2"},
		{"duplicate username", "bob2@test.local", "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, &User{
				Email:        tt.email,
				Username:     tt.username,
				PasswordHash: "x",
				Role:         RoleUser,
				Tier:         TierFree,
			})
			if !errors.Is(err, core.ErrDuplicateKey) {
				t.Errorf("expected ErrDuplicateKey, got %v", err)
			}
		})
	}
}

func TestUpdateTierAndExpiry(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	u := createUser(t, repo, "carol@test.local", "carol")

	expiry := "2026-10-01"
	if err := repo.UpdateTierAndExpiry(ctx, u.ID, TierPro, &expiry); err != nil {
		t.Fatalf("UpdateTierAndExpiry: %v", err)
	}

	updated, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Tier != TierPro {
		t.Errorf("tier = %q, want Pro", updated.Tier)
	}
	if updated.SubscriptionExpiry == nil || *updated.SubscriptionExpiry != expiry {
		t.Errorf("expiry = %v, want %q", updated.SubscriptionExpiry, expiry)
	}

	if err := repo.UpdateTierAndExpiry(ctx, u.ID, TierFree, nil); err != nil {
		t.Fatalf("clear tier: %v", err)
	}
	updated, _ = repo.GetByID(ctx, u.ID)
	if updated.SubscriptionExpiry != nil {
		t.Errorf("expiry = %q, want nil", *updated.SubscriptionExpiry)
	}

	err = repo.UpdateTierAndExpiry(ctx, 404, TierPro, &expiry)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
}

func TestAdjustBalance(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	u := createUser(t, repo, "dave@test.local", "dave")

	if err := repo.AdjustBalance(ctx, u.ID, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := repo.AdjustBalance(ctx, u.ID, -40); err != nil {
		t.Fatalf("debit: %v", err)
	}

	updated, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.BalanceUSD != 60 {
		t.Errorf("balance = %v, want 60", updated.BalanceUSD)
	}

	// Overdrawing affects no rows and the balance is untouched.
	err = repo.AdjustBalance(ctx, u.ID, -100)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("overdraw: expected ErrInvalidInput, got %v", err)
	}
	updated, _ = repo.GetByID(ctx, u.ID)
	if updated.BalanceUSD != 60 {
		t.Errorf("balance after failed debit = %v, want 60", updated.BalanceUSD)
	}

	err = repo.AdjustBalance(ctx, 404, 10)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
}

func TestListSubscribed(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	free := createUser(t, repo, "free@test.local", "freerider")
	pro := createUser(t, repo, "pro@test.local", "prouser")
	premium := createUser(t, repo, "premium@test.local", "premiumuser")

	expiry := "2026-12-31"
	if err := repo.UpdateTierAndExpiry(ctx, pro.ID, TierPro, &expiry); err != nil {
		t.Fatalf("set pro: %v", err)
	}
	if err := repo.UpdateTierAndExpiry(ctx, premium.ID, TierPremium, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}

	subscribed, err := repo.ListSubscribed(ctx)
	if err != nil {
		t.Fatalf("ListSubscribed: %v", err)
	}

	if len(subscribed) != 2 {
		t.Fatalf("subscribed = %d rows, want 2", len(subscribed))
	}
	for _, u := range subscribed {
		if u.ID == free.ID {
			t.Errorf("free tier user %d must not appear", u.ID)
		}
	}
}

func TestListUsers(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	createUser(t, repo, "erin@test.local", "erin")
	createUser(t, repo, "frank@test.local", "frank")
	admin := createUser(t, repo, "root@test.local", "rootadmin")

	expiry := "2026-12-31"
	if err := repo.UpdateTierAndExpiry(ctx, admin.ID, TierPremium, &expiry); err != nil {
		t.Fatalf("set tier: %v", err)
	}

	tests := []struct {
		name      string
		params    ListUsersParams
		wantTotal int
	}{
		{"no filters returns everyone", ListUsersParams{}, 3},
		{"search by username fragment", ListUsersParams{Search: "fran"}, 1},
		{"search by email fragment", ListUsersParams{Search: "root@"}, 1},
		{"filter by tier", ListUsersParams{Tier: TierPremium}, 1},
		{"no matches", ListUsersParams{Search: "zzz"}, 0},
		{"percent wildcard is literal", ListUsersParams{Search: "%"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, tt.params)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(users) != tt.wantTotal {
				t.Errorf("rows = %d, want %d", len(users), tt.wantTotal)
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		createUser(t, repo, name+"@test.local", name)
	}

	users, total, err := repo.List(ctx, ListUsersParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(users) != 2 {
		t.Errorf("page rows = %d, want 2", len(users))
	}
}

func TestExists(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	createUser(t, repo, "gina@test.local", "gina")

	exists, err := repo.ExistsByEmail(ctx, "gina@test.local")
	if err != nil || !exists {
		t.Errorf("ExistsByEmail = (%v, %v), want (true, nil)", exists, err)
	}
	exists, err = repo.ExistsByUsername(ctx, "nobody")
	if err != nil || exists {
		t.Errorf("ExistsByUsername = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestExpiryTime(t *testing.T) {
	valid := "2026-09-15"
	malformed := "15/09/2026"

	tests := []struct {
		name    string
		expiry  *string
		wantErr bool
	}{
		{"valid date parses", &valid, false},
		{"nil expiry errors", nil, true},
		{"malformed date errors", &malformed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{SubscriptionExpiry: tt.expiry}
			parsed, err := u.ExpiryTime()
			if tt.wantErr {
				if err == nil {
					t.Error("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpiryTime: %v", err)
			}
			if got := parsed.Format(ExpiryLayout); got != *tt.expiry {
				t.Errorf("parsed = %q, want %q", got, *tt.expiry)
			}
		})
	}
}
