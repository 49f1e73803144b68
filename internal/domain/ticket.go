package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "critical"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityLow      TicketPriority = "low"
)

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// TicketLabel enumerates classification labels.
type TicketLabel string

const (
	LabelBug           TicketLabel = "bug"
	LabelFeature       TicketLabel = "feature"
	LabelEnhancement   TicketLabel = "enhancement"
	LabelDocumentation TicketLabel = "documentation"
	LabelQuestion      TicketLabel = "question"
)

// ValidLabel reports whether the value is a known label.
func ValidLabel(l TicketLabel) bool {
	switch l {
	case LabelBug, LabelFeature, LabelEnhancement, LabelDocumentation, LabelQuestion:
		return true
	}
	return false
}

// DedupeLabels returns the labels with duplicates removed, first
// occurrence order preserved. Label sets are stored deduplicated.
func DedupeLabels(labels []TicketLabel) []TicketLabel {
	seen := make(map[TicketLabel]struct{}, len(labels))
	result := make([]TicketLabel, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		result = append(result, label)
	}
	return result
}

// Ticket is the aggregate for support requests. TicketNumber is assigned
// once by the record store at creation and never reused. Author fields are
// immutable after creation; the assignee may change.
type Ticket struct {
	ID           string
	TicketNumber int64
	Title        string
	Description  string
	AuthorID     string
	AuthorName   string
	AuthorEmail  string
	AssigneeID   *string
	AssigneeName *string
	Status       TicketStatus
	Priority     TicketPriority
	Labels       []TicketLabel
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}
