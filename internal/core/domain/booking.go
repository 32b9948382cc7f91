package domain

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is an event engagement for a customer.
type Booking struct {
	ID             string        `json:"id"`
	CustomerID     string        `json:"customerId,omitempty"`
	CustomerName   string        `json:"customerName"`
	CustomerPhone  string        `json:"customerPhone,omitempty"`
	EventType      string        `json:"eventType"`
	Date           time.Time     `json:"date"`
	PackageID      string        `json:"packageId,omitempty"`
	DJPackage      string        `json:"djPackage,omitempty"`
	Status         BookingStatus `json:"status"`
	Amount         float64       `json:"amount"`
	AdvanceAmount  float64       `json:"advanceAmount"`
	ReceivedAmount float64       `json:"receivedAmount"`
	BalanceAmount  float64       `json:"balanceAmount"`
	Location       string        `json:"location"`
	Notes          string        `json:"notes,omitempty"`
	CrewAssigned   []string      `json:"crewAssigned,omitempty"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// BalanceDue is total minus everything already paid.
func BalanceDue(total, advance, received float64) float64 {
	return total - (advance + received)
}

// Rebalance recomputes BalanceAmount from the other amounts and rejects
// combinations that would leave a negative balance.
func (b *Booking) Rebalance() error {
	balance := BalanceDue(b.Amount, b.AdvanceAmount, b.ReceivedAmount)
	if balance < 0 {
		return InvalidField("receivedAmount", fmt.Sprintf("advance plus received exceeds amount by %.2f", -balance))
	}
	b.BalanceAmount = balance
	return nil
}

// SettleBalance moves the outstanding balance into ReceivedAmount and
// returns the amount credited.
func (b *Booking) SettleBalance() float64 {
	due := b.BalanceAmount
	b.ReceivedAmount += due
	b.BalanceAmount = 0
	return due
}
