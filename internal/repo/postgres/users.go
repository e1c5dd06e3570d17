package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/fullpotential/dashboard/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// NormalizeEmail lower-cases and trims an address; all lookups and inserts
// go through it so casing never produces duplicate accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, fullName, tier string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (email, password_hash, full_name, tier)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password_hash, full_name, tier, created_at, last_login, is_active, billing_customer_id`,
		NormalizeEmail(email), passwordHash, fullName, tier,
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Tier,
		&u.CreatedAt,
		&u.LastLogin,
		&u.IsActive,
		&u.BillingCustomerID,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, full_name, tier, created_at, last_login, is_active, billing_customer_id
         FROM users
         WHERE email = $1`,
		NormalizeEmail(email),
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Tier,
		&u.CreatedAt,
		&u.LastLogin,
		&u.IsActive,
		&u.BillingCustomerID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

