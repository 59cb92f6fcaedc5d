package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "Open"
	TicketStatusClosed TicketStatus = "Closed"
)

// TicketPriority enumerates urgency levels chosen by the owner.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketPriorities lists the accepted priority values.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
}

// Ticket is a support request. OwnerUserID is set once at creation.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// OwnedBy reports whether userID is the ticket owner.
func (t *Ticket) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.OwnerUserID == userID
}
