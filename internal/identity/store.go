package identity

import (
	"context"
	"errors"
)

// Identity is the stable result of a successful credential operation. ID never
// changes for the lifetime of the credential and is reused as the account key.
type Identity struct {
	ID    string
	Email string
}

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store authenticates credentials and issues stable user identifiers. The rest
// of the system consults it and never re-implements credential handling.
//
// A credential may outlive its account: when the account write fails after
// registration the credential is left orphaned. Cleaning those up needs a
// reconciliation sweep that is out of scope here.
type Store interface {
	Register(ctx context.Context, email, password string) (Identity, error)
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}
