package orders

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	// Off the delivery track; an order never leaves these.
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

var track = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// ParseStatus normalizes what the API reports. Unknown values read as pending.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return st
	case "confirmed", "paid":
		return StatusProcessing
	default:
		return StatusPending
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// Stage is the position on the delivery track, or -1 for cancelled and refunded orders.
func (s Status) Stage() int {
	for i, st := range track {
		if st == s {
			return i
		}
	}
	return -1
}

// Reached reports whether the order has got at least as far as other.
func (s Status) Reached(other Status) bool {
	a, b := s.Stage(), other.Stage()
	return a >= 0 && b >= 0 && a >= b
}

// Progress lists every stage of the track with whether the order has reached it.
func (s Status) Progress() []Milestone {
	out := make([]Milestone, len(track))
	for i, st := range track {
		out[i] = Milestone{Status: st, Done: s.Reached(st), Current: s == st}
	}
	return out
}

type Milestone struct {
	Status  Status `json:"status"`
	Done    bool   `json:"done"`
	Current bool   `json:"current"`
}

func (s Status) String() string { return string(s) }
