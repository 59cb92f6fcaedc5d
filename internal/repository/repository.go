package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	// Create inserts user; a taken email yields ErrDuplicate.
	Create(ctx context.Context, user *domain.User) error
	// GetByEmail returns the full record including the password hash.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetProfileByID returns id, name, email and created_at only.
	GetProfileByID(ctx context.Context, id string) (*domain.User, error)
}

// TicketRepository encapsulates ticket persistence. Reads and updates are
// always scoped by owner at the query level.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id, ownerID string, status domain.TicketStatus, closedAt *time.Time) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
