package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fullpotential/dashboard/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRow struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionsRepo struct {
	pool *pgxpool.Pool
}

func NewSessionsRepo(pool *pgxpool.Pool) *SessionsRepo {
	return &SessionsRepo{pool: pool}
}

// Create persists a session token and stamps the owner's last_login in the
// same transaction, since a new session is by definition a login.
func (r *SessionsRepo) Create(ctx context.Context, userID int64, token string, createdAt, expiresAt time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (user_id, token, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, token, createdAt, expiresAt,
	)

	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET last_login = $2 WHERE id = $1`,
		userID, createdAt,
	)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetUserByToken resolves a token to its owning user. Expired tokens,
// unknown tokens and deactivated owners all come back as
// ErrSessionNotFound; callers cannot tell the cases apart.
func (r *SessionsRepo) GetUserByToken(ctx context.Context, token string, now time.Time) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, u.full_name, u.tier, u.created_at, u.last_login, u.is_active, u.billing_customer_id
		FROM users u
		JOIN sessions s ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2 AND u.is_active
	`, token, now).Scan(
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
			return user.User{}, ErrSessionNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Delete is idempotent; removing an unknown token is not an error.
func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE token = $1`,
		token,
	)

	return err
}

// DeleteExpired removes rows whose expiry has passed and reports how many
// were swept.
func (r *SessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1`,
		now,
	)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
