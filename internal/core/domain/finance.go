package domain

import "time"

// FinanceType separates money in from money out.
type FinanceType string

const (
	FinanceIncome  FinanceType = "INCOME"
	FinanceExpense FinanceType = "EXPENSE"
)

// BookingPaymentCategory is used for ledger entries created by settling a booking.
const BookingPaymentCategory = "Booking Payment"

// FinanceRecord is a single ledger entry.
type FinanceRecord struct {
	ID               string      `json:"id"`
	Type             FinanceType `json:"type"`
	Amount           float64     `json:"amount"`
	Category         string      `json:"category"`
	Date             time.Time   `json:"date"`
	Description      string      `json:"description"`
	RelatedBookingID string      `json:"relatedBookingId,omitempty"`
	Version          int64       `json:"version"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}
