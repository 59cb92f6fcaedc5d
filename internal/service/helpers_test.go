package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository/sqlite"
)

type testEnv struct {
	auth       *AuthService
	tickets    *TicketService
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	published  *[]events.Event
}

// steppingClock advances one second per call so creation order is stable.
type steppingClock struct {
	t time.Time
}

func (c *steppingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := persistence.OpenSQLite(context.Background(), config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	tokens := auth.NewTokenManager("service-secret", 0, nil)
	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	record := func(_ context.Context, e events.Event) error {
		*published = append(*published, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketStatusChanged, record)

	authSvc := NewAuthService(config.AuthConfig{BcryptCost: auth.MinBcryptCost}, AuthDependencies{
		UserRepo: sqlite.NewUserRepository(store.DB),
		Tokens:   tokens,
	})
	ticketSvc := NewTicketService(TicketDependencies{
		TicketRepo: sqlite.NewTicketRepository(store.DB),
		Dispatcher: dispatcher,
	})
	clock := &steppingClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	ticketSvc.now = clock.Now

	return &testEnv{auth: authSvc, tickets: ticketSvc, tokens: tokens, dispatcher: dispatcher, published: published}
}

func (e *testEnv) register(t *testing.T, name, email, password string) domain.Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return domain.Authenticated(res.User)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetProfileByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Ticket, error) {
	args := m.Called(ctx, id, ownerID)
	tk, _ := args.Get(0).(*domain.Ticket)
	return tk, args.Error(1)
}

func (m *mockTicketRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, ownerID)
	list, _ := args.Get(0).([]domain.Ticket)
	return list, args.Error(1)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, id, ownerID string, status domain.TicketStatus, closedAt *time.Time) error {
	return m.Called(ctx, id, ownerID, status, closedAt).Error(0)
}
