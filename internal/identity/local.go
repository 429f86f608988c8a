package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Credential is a locally stored login secret.
type Credential struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash []byte    `gorm:"not null"`
	CreatedAt    time.Time
}

type localStore struct {
	db *gorm.DB
}

// NewLocalStore returns a Store backed by the application database with
// bcrypt-hashed passwords.
func NewLocalStore(db *gorm.DB) Store {
	return &localStore{db: db}
}

func (s *localStore) Register(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)

	var existing Credential
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return Identity{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}

	credential := Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, err
	}

	return Identity{ID: credential.ID, Email: credential.Email}, nil
}

func (s *localStore) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)

	var credential Credential
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword(credential.PasswordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{ID: credential.ID, Email: credential.Email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
