package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/utils"
)

// userRow is the users table shape. Credential checks happen client
// side against the stored bcrypt hash because the fallback path cannot
// reach the primary backend's auth service.
type userRow struct {
	UserID       string    `json:"user_id,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func (r userRow) toSession() *models.UserSession {
	role := r.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return &models.UserSession{UserID: r.UserID, Email: r.Email, Name: r.Name, Role: role}
}

func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*backend.AuthResult, error) {
	var rows []userRow
	if err := c.do(ctx, http.MethodGet, "users", eq("email", creds.Email), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase: signin %s: %w", creds.Email, status.ErrAuthRequired)
	}
	row := rows[0]
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, fmt.Errorf("supabase: signin %s: %w", creds.Email, status.ErrAuthRequired)
	}

	token, err := utils.GenerateCode(24)
	if err != nil {
		return nil, fmt.Errorf("supabase: signin: token: %v", err)
	}
	return &backend.AuthResult{Session: row.toSession(), Token: token}, nil
}

func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (*backend.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("supabase: signup: bcrypt: %v", err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	var created []userRow
	err = c.do(ctx, http.MethodPost, "users", nil, userRow{
		Email:        req.Email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: string(hash),
	}, &created)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("supabase: signup returned no rows: %w", status.ErrUnavailable)
	}

	token, err := utils.GenerateCode(24)
	if err != nil {
		return nil, fmt.Errorf("supabase: signup: token: %v", err)
	}
	return &backend.AuthResult{Session: created[0].toSession(), Token: token}, nil
}

// SignOut on the fallback path has nothing to revoke server side; the
// session store holds the only durable state.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return nil
}
