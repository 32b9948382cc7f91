package domain

import "time"

// ActionKind is the mutation recorded by an audit entry.
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
)

// EntityKind names the collection an audit entry refers to.
type EntityKind string

const (
	EntityBooking   EntityKind = "BOOKING"
	EntityFinance   EntityKind = "FINANCE"
	EntityUser      EntityKind = "USER"
	EntityInventory EntityKind = "INVENTORY"
	EntityPackage   EntityKind = "PACKAGE"
	EntitySetting   EntityKind = "SETTING"
)

// AuditRecord is an append-only trace of a mutating action.
type AuditRecord struct {
	ID        string
	ActorID   string
	Action    ActionKind
	Entity    EntityKind
	EntityID  string
	Details   string
	Timestamp time.Time
}
