package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("All fields are required", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), auth.IdentityFromContext(c), service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("Ticket created successfully", dto.NewTicketResponse(ticket)))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Tickets fetched", dto.NewTicketListResponse(tickets)))
}

// GetTicket GET /tickets/:id. Missing and foreign tickets look the same.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket == nil {
		return c.Status(http.StatusNotFound).JSON(dto.ActionResponse{
			Success: false,
			Message: "Ticket not found",
			Data:    (*dto.TicketResponse)(nil),
		})
	}
	return c.JSON(dto.OK("Ticket fetched", dto.NewTicketResponse(ticket)))
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticket, err := h.service.CloseTicket(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Ticket closed successfully", dto.NewTicketResponse(ticket)))
}
