package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

// SessionSource resolves a bearer token to the session it belongs to.
// Services check it before making any network call.
type SessionSource interface {
	CurrentUser(ctx context.Context, token string) (*models.UserSession, error)
	ForceLogout(ctx context.Context, userID string) error
}

// AuthService persists login state durably in redis, one session per
// user; logging in again replaces the previous token.
type AuthService struct {
	Redis *redis.Client
	store backend.Store
	ttl   time.Duration
}

func NewAuthService(redisClient *redis.Client, store backend.Store, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{Redis: redisClient, store: store, ttl: sessionTTL}
}

func tokenKey(token string) string { return fmt.Sprintf("session:token:%s", token) }
func userKey(userID string) string { return fmt.Sprintf("session:user:%s", userID) }

func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.UserSession, string, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, "", status.Invalid("credentials", "email and password are required")
	}

	result, err := s.store.SignIn(ctx, creds)
	if err != nil {
		return nil, "", err
	}
	if err := s.persistSession(ctx, result.Session, result.Token); err != nil {
		return nil, "", err
	}
	return result.Session, result.Token, nil
}

func (s *AuthService) Register(ctx context.Context, req models.SignUpRequest) (*models.UserSession, string, error) {
	if req.Email == "" || req.Password == "" {
		return nil, "", status.Invalid("signup", "email and password are required")
	}
	if req.Name == "" {
		return nil, "", status.Invalid("signup", "name is required")
	}

	result, err := s.store.SignUp(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if err := s.persistSession(ctx, result.Session, result.Token); err != nil {
		return nil, "", err
	}
	return result.Session, result.Token, nil
}

// Logout clears the durable session. The backend sign-out is best
// effort: local state is cleared regardless.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	if err := s.store.SignOut(ctx, token); err != nil {
		log.Printf("auth: backend signout: %v", err)
	}

	if err := s.Redis.Del(ctx, tokenKey(token), userKey(session.UserID)).Err(); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// CurrentUser resolves token to its session, or ErrAuthRequired.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.UserSession, error) {
	if token == "" {
		return nil, status.ErrAuthRequired
	}
	data, err := s.Redis.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return nil, status.ErrAuthRequired
	} else if err != nil {
		return nil, fmt.Errorf("auth: session lookup: %v: %w", err, status.ErrAuthRequired)
	}

	var session models.UserSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("auth: session decode: %v: %w", err, status.ErrAuthRequired)
	}
	return &session, nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.CurrentUser(ctx, token)
	return err == nil
}

func (s *AuthService) Role(ctx context.Context, token string) (string, error) {
	session, err := s.CurrentUser(ctx, token)
	if err != nil {
		return "", err
	}
	return session.Role, nil
}

// ForceLogout clears the session after an authentication rejection from
// any authenticated call.
func (s *AuthService) ForceLogout(ctx context.Context, userID string) error {
	token, err := s.Redis.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return nil
	} else if err != nil {
		return fmt.Errorf("auth: force logout: %w", err)
	}
	return s.Redis.Del(ctx, tokenKey(token), userKey(userID)).Err()
}

func (s *AuthService) persistSession(ctx context.Context, session *models.UserSession, token string) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("auth: session encode: %v", err)
	}

	// Replace any previous session for this user.
	old, err := s.Redis.Get(ctx, userKey(session.UserID)).Result()
	if err == nil && old != "" && old != token {
		s.Redis.Del(ctx, tokenKey(old))
	}

	if err := s.Redis.Set(ctx, tokenKey(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: session persist: %w", err)
	}
	if err := s.Redis.Set(ctx, userKey(session.UserID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: session persist: %w", err)
	}
	return nil
}
