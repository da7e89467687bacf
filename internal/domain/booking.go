package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
)

type Booking struct {
	ID            string
	UserID        string
	ProviderID    *string
	ServiceID     string
	Status        BookingStatus
	ScheduledDate time.Time
	CompletedDate *time.Time
	Address       string
	Latitude      *float64
	Longitude     *float64
	Notes         string
	AmountCents   int64
	Currency      string
	PaymentMethod string
	PaymentState  PaymentState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// transitions holds the forward-only edges of the booking lifecycle.
// pending -> completed must pass through confirmed; nothing is reversible.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted},
}

func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns every status from which a booking may move to the given
// status. Repositories use it to build conditional updates.
func AllowedFrom(to BookingStatus) []BookingStatus {
	var from []BookingStatus
	for f, targets := range transitions {
		for _, t := range targets {
			if t == to {
				from = append(from, f)
			}
		}
	}
	return from
}

func (s BookingStatus) Terminal() bool {
	return len(transitions[s]) == 0
}
