package models

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus is the closed set of ticket lifecycle states.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusClosed     TicketStatus = "closed"
)

// ParseTicketStatus normalizes a raw status string into a TicketStatus.
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusClosed:
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", s)
	}
}

// TicketPriority is the closed set of ticket priorities.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// ParseTicketPriority normalizes a raw priority string into a TicketPriority.
func ParseTicketPriority(s string) (TicketPriority, error) {
	switch TicketPriority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown ticket priority %q", s)
	}
}

// Ticket is a support ticket row. Solution fields are nil until a technician
// records a resolution.
type Ticket struct {
	ID              int64
	UserID          int64
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Category        string
	TechID          *int64
	TitleSolution   *string
	TechDescription *string
	DateSolution    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Attachment records an object-storage key uploaded against a ticket.
type Attachment struct {
	ID        int64
	TicketID  int64
	Key       string
	FileName  string
	CreatedAt time.Time
}
