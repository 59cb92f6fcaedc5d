package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

const ticketCols = `id, subject, description, priority, status, owner_user_id, created_at, updated_at, closed_at`

type ticketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTicketRepository returns a SQLite-backed implementation.
func NewTicketRepository(db *sql.DB) repository.TicketRepository {
	return &ticketRepository{db: db, now: time.Now}
}

func scanTicket(scanner interface{ Scan(...any) error }) (*domain.Ticket, error) {
	var t domain.Ticket
	err := scanner.Scan(&t.ID, &t.Subject, &t.Description, &t.Priority, &t.Status,
		&t.OwnerUserID, &t.CreatedAt, &t.UpdatedAt, &t.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (id, subject, description, priority, status, owner_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID, ticket.Subject, ticket.Description, string(ticket.Priority), string(ticket.Status),
		ticket.OwnerUserID, ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", mapError(err))
	}
	return nil
}

func (r *ticketRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE id = ? AND owner_user_id = ?`, id, ownerID)
	t, err := scanTicket(row)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", mapError(err))
	}
	return t, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE owner_user_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id, ownerID string, status domain.TicketStatus, closedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, closed_at = ?, updated_at = ? WHERE id = ? AND owner_user_id = ?`,
		string(status), closedAt, r.now().UTC(), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
