package dto

import (
	"time"

	"github.com/exambel/exambel-api/internal/models"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Workplace string `json:"workplace" validate:"required,min=1,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse serializes account data.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Workplace string    `json:"workplace"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse carries the session token (when freshly issued), the
// account and the destination the authorization gate resolved to.
type SessionResponse struct {
	Token   string          `json:"token,omitempty"`
	Account AccountResponse `json:"account"`
	Route   string          `json:"route"`
}

// NewAccountResponse converts an account model into a DTO.
func NewAccountResponse(account models.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      string(account.Role),
		Status:    string(account.Status),
		Workplace: account.Workplace,
		CreatedAt: account.CreatedAt,
	}
}
