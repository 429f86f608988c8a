package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/identity"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

var (
	// ErrAccountNotFound indicates a valid credential without a matching
	// account document. The session must be terminated.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountRejected indicates a rejected teacher attempting to use a
	// session. The caller must force a sign-out, not show a local error.
	ErrAccountRejected = errors.New("account rejected")
)

// AuthService handles registration, login and session resumption.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, error)
	Resume(ctx context.Context, accountID string) (dto.SessionResponse, error)
}

type authService struct {
	accounts   repository.AccountRepository
	identities identity.Store
	activity   ActivityRecorder
	realtime   realtime.Publisher
	validator  *validator.Validate
	jwtSecret  string
	tokenTTL   time.Duration
	logger     zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(accounts repository.AccountRepository, identities identity.Store, activity ActivityRecorder, publisher realtime.Publisher, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		accounts:   accounts,
		identities: identities,
		activity:   activity,
		realtime:   publisher,
		validator:  validate,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates the credential, then assigns role and status atomically:
// the first registrant wins the admin grant and is approved immediately,
// everyone after becomes a pending teacher awaiting review.
func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	ident, err := s.identities.Register(ctx, payload.Email, payload.Password)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	account := models.Account{
		ID:        ident.ID,
		Name:      strings.TrimSpace(payload.Name),
		Email:     ident.Email,
		Workplace: strings.TrimSpace(payload.Workplace),
	}

	admin, err := s.accounts.CreateWithRoleAssignment(ctx, &account)
	if err != nil {
		// The credential stays behind orphaned; see identity.Store.
		s.logger.Error().Err(err).Str("email", ident.Email).Msg("account write failed after credential creation")
		return dto.SessionResponse{}, err
	}

	action := models.ActionTeacherRegistered
	if admin {
		action = models.ActionAdminRegistered
	}
	s.activity.Record(ctx, action, map[string]interface{}{
		"name":  account.Name,
		"email": account.Email,
	})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionTeachers, TeacherID: account.ID})

	return s.sessionFor(account, true)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	ident, err := s.identities.Authenticate(ctx, payload.Email, payload.Password)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	account, err := s.lookupAuthorized(ctx, ident.ID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	return s.sessionFor(account, true)
}

// Resume re-evaluates the authorization gate for an existing session. A valid
// token is not enough: the account must still exist and must not be rejected.
func (s *authService) Resume(ctx context.Context, accountID string) (dto.SessionResponse, error) {
	account, err := s.lookupAuthorized(ctx, accountID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	return s.sessionFor(account, false)
}

func (s *authService) lookupAuthorized(ctx context.Context, accountID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}

	if account.Route() == models.RouteSignedOut {
		return models.Account{}, ErrAccountRejected
	}
	return account, nil
}

func (s *authService) sessionFor(account models.Account, issueToken bool) (dto.SessionResponse, error) {
	response := dto.SessionResponse{
		Account: dto.NewAccountResponse(account),
		Route:   string(account.Route()),
	}

	if issueToken {
		token, err := s.issueToken(account)
		if err != nil {
			return dto.SessionResponse{}, err
		}
		response.Token = token
	}
	return response, nil
}

func (s *authService) issueToken(account models.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  account.ID,
		"role": string(account.Role),
		"name": account.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
