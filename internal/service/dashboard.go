package service

import (
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// FilterAll is the sentinel meaning "no constraint" for a filter dimension.
const FilterAll = "all"

// TicketStats is the fleet-wide dashboard read model.
type TicketStats struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	Closed       int `json:"closed"`
	OpenCritical int `json:"open_critical"`
	OpenHigh     int `json:"open_high"`
}

// ComputeStats derives dashboard counters from the ticket collection.
func ComputeStats(tickets []domain.Ticket) TicketStats {
	stats := TicketStats{Total: len(tickets)}
	for i := range tickets {
		ticket := &tickets[i]
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.Open++
			switch ticket.Priority {
			case domain.TicketPriorityCritical:
				stats.OpenCritical++
			case domain.TicketPriorityHigh:
				stats.OpenHigh++
			}
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// TicketFilter combines free-text search with status, priority, and label
// constraints. Dimensions are independently optional (empty or "all" means
// unconstrained) and combine with logical AND.
type TicketFilter struct {
	Search   string
	Status   string
	Priority string
	Label    string
}

// Matches reports whether the ticket satisfies every active constraint.
// Search is a case-insensitive substring match against title, description,
// author name, and the literal "#<ticketNumber>" token.
func (f TicketFilter) Matches(ticket *domain.Ticket) bool {
	if query := strings.ToLower(strings.TrimSpace(f.Search)); query != "" {
		numberToken := "#" + strconv.FormatInt(ticket.TicketNumber, 10)
		if !strings.Contains(strings.ToLower(ticket.Title), query) &&
			!strings.Contains(strings.ToLower(ticket.Description), query) &&
			!strings.Contains(strings.ToLower(ticket.AuthorName), query) &&
			!strings.Contains(numberToken, query) {
			return false
		}
	}
	if f.Status != "" && f.Status != FilterAll && ticket.Status != domain.TicketStatus(f.Status) {
		return false
	}
	if f.Priority != "" && f.Priority != FilterAll && ticket.Priority != domain.TicketPriority(f.Priority) {
		return false
	}
	if f.Label != "" && f.Label != FilterAll {
		found := false
		for _, label := range ticket.Labels {
			if label == domain.TicketLabel(f.Label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterTickets applies the filter preserving input order.
func FilterTickets(tickets []domain.Ticket, filter TicketFilter) []domain.Ticket {
	result := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if filter.Matches(&tickets[i]) {
			result = append(result, tickets[i])
		}
	}
	return result
}

// NextTicketNumber previews the number the next created ticket will likely
// receive. Advisory only: the record store assigns the authoritative number
// on insert, so this is a display hint, not a reservation.
func NextTicketNumber(tickets []domain.Ticket) int64 {
	var max int64
	for i := range tickets {
		if tickets[i].TicketNumber > max {
			max = tickets[i].TicketNumber
		}
	}
	return max + 1
}
