package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestTicketService_AliceAndBob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "Alice", "alice@x.com", "pw123")
	bob := env.register(t, "Bob", "bob@x.com", "hunter2")

	_, err := env.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeBadCredentials))
	_, err = env.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{
		Subject:     "Printer down",
		Description: "The third floor printer is jammed",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID(), ticket.OwnerUserID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)

	_, err = env.tickets.CloseTicket(ctx, bob, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDenied))

	still, err := env.tickets.GetTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, domain.TicketStatusOpen, still.Status)

	closed, err := env.tickets.CloseTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	again, err := env.tickets.CloseTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, again.Status)

	var types []events.EventType
	for _, e := range *env.published {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketStatusChanged}, types,
		"repeat close publishes nothing")
}

func TestTicketService_CreateTicket(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@x.com", "pw123")
	ctx := context.Background()

	t.Run("anonymous is denied", func(t *testing.T) {
		_, err := env.tickets.CreateTicket(ctx, domain.Anonymous(), TicketCreateInput{Subject: "s", Description: "d", Priority: "Low"})
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeDenied, domainErr.Code)
		assert.Equal(t, "You must be logged in to create a ticket", domainErr.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "s", Priority: "Low"})
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
		assert.Equal(t, "All fields are required", domainErr.Message)
	})

	t.Run("unknown priority", func(t *testing.T) {
		_, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "s", Description: "d", Priority: "Urgent"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("priority is case-insensitive", func(t *testing.T) {
		ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "s", Description: "d", Priority: "medium"})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	})
}

func TestTicketService_ListAndGetAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@x.com", "pw123")
	bob := env.register(t, "Bob", "bob@x.com", "pw456")

	first, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "first", Description: "d", Priority: "Low"})
	require.NoError(t, err)
	_, err = env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "second", Description: "d", Priority: "High"})
	require.NoError(t, err)
	bobs, err := env.tickets.CreateTicket(ctx, bob, TicketCreateInput{Subject: "bob's", Description: "d", Priority: "Low"})
	require.NoError(t, err)

	list, err := env.tickets.ListTickets(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Subject)
	for _, tk := range list {
		assert.Equal(t, alice.UserID(), tk.OwnerUserID)
	}

	anonList, err := env.tickets.ListTickets(ctx, domain.Anonymous())
	require.NoError(t, err)
	assert.NotNil(t, anonList)
	assert.Empty(t, anonList)

	got, err := env.tickets.GetTicket(ctx, alice, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Subject)

	for name, tc := range map[string]struct {
		identity domain.Identity
		id       string
	}{
		"anonymous":     {identity: domain.Anonymous(), id: first.ID},
		"another owner": {identity: alice, id: bobs.ID},
		"unknown id":    {identity: alice, id: uuid.NewString()},
		"malformed id":  {identity: alice, id: "not-a-uuid"},
	} {
		t.Run(name, func(t *testing.T) {
			ticket, err := env.tickets.GetTicket(ctx, tc.identity, tc.id)
			assert.NoError(t, err)
			assert.Nil(t, ticket)
		})
	}
}

func TestTicketService_RequireOwnerConflatesMissingAndForeign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@x.com", "pw123")
	bob := env.register(t, "Bob", "bob@x.com", "pw456")

	bobs, err := env.tickets.CreateTicket(ctx, bob, TicketCreateInput{Subject: "bob's", Description: "d", Priority: "Low"})
	require.NoError(t, err)

	_, foreignErr := env.tickets.RequireOwner(ctx, alice, bobs.ID)
	_, missingErr := env.tickets.RequireOwner(ctx, alice, uuid.NewString())
	require.Error(t, foreignErr)
	require.Error(t, missingErr)
	assert.Equal(t, foreignErr.Error(), missingErr.Error())
	assert.True(t, apperrors.HasCode(foreignErr, apperrors.CodeDenied))
}

func TestTicketService_CloseTicketErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@x.com", "pw123")

	_, err := env.tickets.CloseTicket(ctx, alice, "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "s", Description: "d", Priority: "Low"})
	require.NoError(t, err)

	_, err = env.tickets.CloseTicket(ctx, domain.Anonymous(), ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "You are not authorized to close this ticket", apperrors.ToDomainError(err).Message)
}

func TestTicketService_StoreFailures(t *testing.T) {
	owner := domain.Authenticated(&domain.User{ID: "owner-1", Name: "Owner"})
	ticketID := uuid.NewString()

	t.Run("create", func(t *testing.T) {
		repo := new(mockTicketRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		svc := NewTicketService(TicketDependencies{TicketRepo: repo})

		_, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "s", Description: "d", Priority: "Low"})
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeStore, domainErr.Code)
		assert.Equal(t, "An error occurred while creating the ticket", domainErr.Message)
	})

	t.Run("list", func(t *testing.T) {
		repo := new(mockTicketRepo)
		repo.On("ListByOwner", mock.Anything, "owner-1").Return(nil, errors.New("timeout"))
		svc := NewTicketService(TicketDependencies{TicketRepo: repo})

		list, err := svc.ListTickets(context.Background(), owner)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeStore))
		assert.Empty(t, list)
	})

	t.Run("get propagates store errors", func(t *testing.T) {
		repo := new(mockTicketRepo)
		repo.On("GetByIDForOwner", mock.Anything, ticketID, "owner-1").Return(nil, errors.New("timeout"))
		svc := NewTicketService(TicketDependencies{TicketRepo: repo})

		ticket, err := svc.GetTicket(context.Background(), owner, ticketID)
		assert.Nil(t, ticket)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeStore))
	})

	t.Run("close update fails", func(t *testing.T) {
		repo := new(mockTicketRepo)
		repo.On("GetByIDForOwner", mock.Anything, ticketID, "owner-1").Return(&domain.Ticket{
			ID: ticketID, OwnerUserID: "owner-1", Status: domain.TicketStatusOpen,
		}, nil)
		repo.On("UpdateStatus", mock.Anything, ticketID, "owner-1", domain.TicketStatusClosed, mock.Anything).Return(errors.New("lock timeout"))
		svc := NewTicketService(TicketDependencies{TicketRepo: repo})

		_, err := svc.CloseTicket(context.Background(), owner, ticketID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeStore))
		repo.AssertExpectations(t)
	})

	t.Run("row returned for a different owner is denied", func(t *testing.T) {
		repo := new(mockTicketRepo)
		repo.On("GetByIDForOwner", mock.Anything, ticketID, "owner-1").Return(&domain.Ticket{
			ID: ticketID, OwnerUserID: "someone-else", Status: domain.TicketStatusOpen,
		}, nil)
		svc := NewTicketService(TicketDependencies{TicketRepo: repo})

		_, err := svc.CloseTicket(context.Background(), owner, ticketID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeDenied))
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTicketService_FailingSubscriberDoesNotFailCreate(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		return errors.New("webhook unreachable")
	})
	alice := env.register(t, "Alice", "alice@x.com", "pw123")

	ticket, err := env.tickets.CreateTicket(context.Background(), alice, TicketCreateInput{Subject: "s", Description: "d", Priority: "Low"})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
}

func TestTicketService_UpdateRaceIsDenied(t *testing.T) {
	owner := domain.Authenticated(&domain.User{ID: "owner-1"})
	ticketID := uuid.NewString()
	repo := new(mockTicketRepo)
	repo.On("GetByIDForOwner", mock.Anything, ticketID, "owner-1").Return(&domain.Ticket{
		ID: ticketID, OwnerUserID: "owner-1", Status: domain.TicketStatusOpen,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, ticketID, "owner-1", domain.TicketStatusClosed, mock.Anything).Return(repository.ErrNotFound)
	svc := NewTicketService(TicketDependencies{TicketRepo: repo})

	_, err := svc.CloseTicket(context.Background(), owner, ticketID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDenied))
}
