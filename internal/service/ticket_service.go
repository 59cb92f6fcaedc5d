package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const (
	msgLoginToCreate = "You must be logged in to create a ticket"
	msgNotAuthorized = "You are not authorized to access this ticket"
	msgCloseDenied   = "You are not authorized to close this ticket"
)

// TicketService coordinates ticket workflows. Every operation takes the
// caller identity explicitly.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// Validate checks that every field is present and the priority is known.
func (in TicketCreateInput) Validate() error {
	allowed := make([]interface{}, 0, len(domain.TicketPriorities))
	for _, p := range domain.TicketPriorities {
		allowed = append(allowed, p)
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Subject, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Priority, validation.Required, validation.In(allowed...)),
	)
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket creates an Open ticket owned by the caller.
func (s *TicketService) CreateTicket(ctx context.Context, identity domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if identity.IsAnonymous() {
		s.logger.Warn("unauthorized ticket creation attempt")
		return nil, apperrors.NewDenied(msgLoginToCreate)
	}

	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.Priority = normalizePriority(input.Priority)
	if err := input.Validate(); err != nil {
		s.logger.Warn("validation error: missing required field",
			zap.String("subject", input.Subject),
			zap.String("priority", string(input.Priority)))
		return nil, apperrors.NewValidationError("All fields are required", validationDetails(err))
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     input.Subject,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
		OwnerUserID: identity.UserID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("an error occurred while creating the ticket",
			zap.String("user_id", identity.UserID()),
			zap.String("subject", input.Subject),
			zap.String("priority", string(input.Priority)),
			zap.Error(err))
		return nil, apperrors.NewStoreError("An error occurred while creating the ticket", err)
	}

	s.logger.Info("ticket created successfully", zap.String("ticket_id", ticket.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  ticket.OwnerUserID,
		Payload: events.TicketCreatedPayload{
			Priority: ticket.Priority,
			Subject:  ticket.Subject,
		},
	})
	return ticket, nil
}

// ListTickets returns the caller's tickets, newest first. Anonymous callers get
// an empty list.
func (s *TicketService) ListTickets(ctx context.Context, identity domain.Identity) ([]domain.Ticket, error) {
	if identity.IsAnonymous() {
		s.logger.Warn("unauthorized access to tickets")
		return []domain.Ticket{}, nil
	}
	tickets, err := s.tickets.ListByOwner(ctx, identity.UserID())
	if err != nil {
		s.logger.Error("error fetching tickets", zap.String("user_id", identity.UserID()), zap.Error(err))
		return []domain.Ticket{}, apperrors.NewStoreError("Error fetching tickets", err)
	}
	s.logger.Debug("fetched ticket list", zap.Int("count", len(tickets)))
	return tickets, nil
}

// GetTicket returns the ticket when the caller owns it. Anonymous callers,
// unknown ids and other users' tickets all yield nil without an error.
func (s *TicketService) GetTicket(ctx context.Context, identity domain.Identity, ticketID string) (*domain.Ticket, error) {
	if identity.IsAnonymous() {
		s.logger.Warn("unauthorized access to the ticket page", zap.String("ticket_id", ticketID))
		return nil, nil
	}
	ticket, err := s.RequireOwner(ctx, identity, ticketID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeDenied) {
			s.logger.Warn("ticket not found", zap.String("ticket_id", ticketID), zap.String("user_id", identity.UserID()))
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

// RequireOwner loads the ticket if identity owns it. Missing tickets and
// tickets owned by someone else produce the same Denied error.
func (s *TicketService) RequireOwner(ctx context.Context, identity domain.Identity, ticketID string) (*domain.Ticket, error) {
	return s.requireOwner(ctx, identity, ticketID, msgNotAuthorized)
}

func (s *TicketService) requireOwner(ctx context.Context, identity domain.Identity, ticketID, deniedMsg string) (*domain.Ticket, error) {
	if identity.IsAnonymous() {
		return nil, apperrors.NewDenied(deniedMsg)
	}
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewDenied(deniedMsg)
	}

	ticket, err := s.tickets.GetByIDForOwner(ctx, ticketID, identity.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewDenied(deniedMsg)
		}
		s.logger.Error("error fetching ticket data", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, apperrors.NewStoreError("Error fetching ticket data", err)
	}
	if !ticket.OwnedBy(identity.UserID()) {
		return nil, apperrors.NewDenied(deniedMsg)
	}
	return ticket, nil
}

// CloseTicket moves an owned ticket to Closed. Closing a closed ticket succeeds
// without writing.
func (s *TicketService) CloseTicket(ctx context.Context, identity domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		s.logger.Warn("missing ticket id")
		return nil, apperrors.NewValidationError("Ticket id is required", nil)
	}

	ticket, err := s.requireOwner(ctx, identity, ticketID, msgCloseDenied)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeDenied) {
			s.logger.Warn("unauthorized ticket close attempt",
				zap.String("ticket_id", ticketID),
				zap.String("user_id", identity.UserID()))
		}
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return ticket, nil
	}

	now := s.now().UTC()
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, identity.UserID(), domain.TicketStatusClosed, &now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewDenied(msgCloseDenied)
		}
		s.logger.Error("failed to close ticket", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return nil, apperrors.NewStoreError("Failed to close ticket", err)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  identity.UserID(),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func normalizePriority(p domain.TicketPriority) domain.TicketPriority {
	trimmed := strings.TrimSpace(string(p))
	for _, known := range domain.TicketPriorities {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	return domain.TicketPriority(trimmed)
}
