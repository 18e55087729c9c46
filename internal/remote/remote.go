// Package remote defines the capability interface the session store and the
// transaction cache use to reach persistence, authentication and realtime
// change notification. Two implementations exist: gormstore (a real SQL
// backed store) and memstore (demo/local mode). One is selected at startup.
package remote

import (
	"context"
	"errors"

	"finance-dashboard/internal/domain"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("not allowed for this session")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Auth is the authentication endpoint.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	SignOut(ctx context.Context) error
	// CurrentSession recovers a previously established session, or nil.
	CurrentSession(ctx context.Context) (*domain.Session, error)
	// UpdateCredentials changes email and/or password of the current session.
	UpdateCredentials(ctx context.Context, email, password *string) error
	RequestPasswordReset(ctx context.Context, email string) error
	// ConfirmPasswordReset sets a new password using a token mailed by
	// RequestPasswordReset.
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// Profiles is the profiles table.
type Profiles interface {
	GetProfile(ctx context.Context, id string) (domain.Profile, error)
	// UpsertProfile merges upd into the row keyed by id, creating it if needed.
	UpsertProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error
}

// Transactions is the transactions table. Every call is owner-scoped.
type Transactions interface {
	// ListTransactions returns the owner's rows ordered by date descending.
	ListTransactions(ctx context.Context, owner string) ([]domain.Transaction, error)
	InsertTransaction(ctx context.Context, owner string, in domain.TransactionInput) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, owner, id string, in domain.TransactionInput) error
	DeleteTransaction(ctx context.Context, owner, id string) error
}

// Investments is the investments table. Every call is owner-scoped.
type Investments interface {
	ListInvestments(ctx context.Context, owner string) ([]domain.Investment, error)
	InsertInvestment(ctx context.Context, owner string, in domain.InvestmentInput) (domain.Investment, error)
	DeleteInvestment(ctx context.Context, owner, id string) error
}

// Realtime opens change-event streams.
type Realtime interface {
	SubscribeTransactions(ctx context.Context, owner string) (*Subscription[domain.Transaction], error)
	SubscribeProfile(ctx context.Context, id string) (*Subscription[domain.Profile], error)
}

// DataSource is everything a client needs from the remote store.
type DataSource interface {
	Auth
	Profiles
	Transactions
	Investments
	Realtime
	// Name identifies the implementation in logs ("remote", "local").
	Name() string
}
