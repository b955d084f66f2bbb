// Package session binds every browser to one game through a signed cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/tictactoe-local/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-local/internal/pkg"
)

const issuer = "tictactoe-local"

type ctxKey struct{}

type Manager struct {
	logger     *slog.Logger
	secret     []byte
	cookieName string
	ttl        time.Duration
	nowFunc    func() time.Time
}

func NewManager(logger *slog.Logger, secret []byte, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		logger:     logger.With("component", "session"),
		secret:     secret,
		cookieName: cookieName,
		ttl:        ttl,
		nowFunc:    time.Now,
	}
}

// Issue signs a token carrying sessionID as its subject.
func (that *Manager) Issue(sessionID string) (string, error) {
	now := that.nowFunc()

	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if that.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(that.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(that.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Parse validates token and returns the session id it carries.
func (that *Manager) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return that.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(that.nowFunc),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidSession, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return "", apperror.ErrInvalidSession
	}

	return claims.Subject, nil
}

// Middleware attaches the session id to the request context, starting a new
// session when the cookie is missing or invalid.
func (that *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := that.logger.With("method", "Middleware")

		sessionID, err := that.fromCookie(r)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				log.Info("session cookie rejected", "error", err)
			}

			sessionID, err = that.start(w)
			if err != nil {
				log.Error("failed to start session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sessionID)))
	})
}

func (that *Manager) fromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(that.cookieName)
	if err != nil {
		return "", err //nolint: wrapcheck // compared with errors.Is by the caller
	}

	return that.Parse(cookie.Value)
}

func (that *Manager) start(w http.ResponseWriter) (string, error) {
	sessionID, err := pkg.GenerateNewSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	token, err := that.Issue(sessionID)
	if err != nil {
		return "", err
	}

	cookie := &http.Cookie{
		Name:     that.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if that.ttl > 0 {
		cookie.Expires = that.nowFunc().Add(that.ttl)
	}
	http.SetCookie(w, cookie)

	return sessionID, nil
}

// Clear expires the session cookie, so the next request starts a new session.
func (that *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     that.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sessionID)
}

// FromContext returns the session id stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(ctxKey{}).(string)
	return sessionID, ok && sessionID != ""
}
