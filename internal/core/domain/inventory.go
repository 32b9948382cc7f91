package domain

import "time"

type InventoryStatus string

const (
	InventoryAvailable   InventoryStatus = "AVAILABLE"
	InventoryInUse       InventoryStatus = "IN_USE"
	InventoryMaintenance InventoryStatus = "MAINTENANCE"
)

// InventoryItem is a piece of sound, lighting or cabling equipment.
type InventoryItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Quantity      int             `json:"quantity"`
	TotalQuantity int             `json:"totalQuantity"`
	Status        InventoryStatus `json:"status"`
	LastChecked   string          `json:"lastChecked,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
