package domain

import (
	"strconv"
	"time"
)

// Urgency is the deadline signal rendered on a card.
type Urgency struct {
	Label  string `json:"label"`
	Urgent bool   `json:"urgent"`
}

// upcomingWindowDays bounds how far ahead a deadline still produces a signal.
const upcomingWindowDays = 7

// ClassifyDeadline derives the urgency signal for a deadline relative to now,
// at day granularity. Completed tasks and tasks without a deadline carry no
// signal, as do deadlines more than a week out. The result is pure and must
// be recomputed for every render.
func ClassifyDeadline(deadline *Date, status Status, now time.Time) (Urgency, bool) {
	if status == StatusCompleted || deadline == nil {
		return Urgency{}, false
	}
	switch days := deadline.DaysFrom(now); {
	case days < 0:
		return Urgency{Label: "Overdue", Urgent: true}, true
	case days == 0:
		return Urgency{Label: "Due today", Urgent: true}, true
	case days == 1:
		return Urgency{Label: "Due tomorrow", Urgent: false}, true
	case days <= upcomingWindowDays:
		return Urgency{Label: "Due in " + strconv.Itoa(days) + " days", Urgent: false}, true
	default:
		return Urgency{}, false
	}
}
