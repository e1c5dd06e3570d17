package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/config"
	"github.com/fullpotential/dashboard/internal/domain/user"
	"github.com/fullpotential/dashboard/internal/http/middlewares"
	"github.com/fullpotential/dashboard/internal/repo/postgres"
	"github.com/fullpotential/dashboard/internal/security"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, fullName, tier string) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID int64, token string, createdAt, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	sessions   SessionStore
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, sessions SessionStore, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		sessions:   sessions,
		cfg:        cfg,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Tier     string `json:"tier"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Tier == "" {
		req.Tier = user.TierSeeker
	}

	// the tier list lives in the domain package, not in a binding tag
	if !user.ValidTier(req.Tier) {
		RespondBadRequest(ctx, "Unknown membership tier", gin.H{"tier": req.Tier})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.FullName, req.Tier)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "email_taken", "An account with this email already exists. Try logging in instead.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	if err := h.issueSession(ctx, cctx, u.ID); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if !foundUser.IsActive {
		RespondUnAuthorized(ctx, "account_deactivated", "Your account has been deactivated. Please contact support.")
		return
	}

	if err := h.issueSession(ctx, cctx, foundUser.ID); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": foundUser})
}

// Logout deletes the presented session. Deleting an unknown token is fine;
// the cookie is cleared either way.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookieName)

	if err == nil && token != "" {
		cctx, cancel := config.WithTimeout(3 * time.Second)
		defer cancel()

		_ = h.sessions.Delete(cctx, token)
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Me returns the authenticated user; RequireAuth has already resolved the
// cookie.
func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// Helper functions

func (h *AuthHandler) issueSession(ctx *gin.Context, cctx context.Context, userID int64) error {
	token, err := security.NewSessionToken()

	if err != nil {
		return err
	}

	createdAt := time.Now().UTC()
	expiresAt := createdAt.Add(time.Duration(h.cfg.SessionTTLHours) * time.Hour)

	if err := h.sessions.Create(cctx, userID, token, createdAt, expiresAt); err != nil {
		return err
	}

	h.setSessionCookie(ctx, token, expiresAt)

	return nil
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
