package domain

import "time"

// EventPackage is a priced bundle offered on the public site.
type EventPackage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Features  []string  `json:"features"`
	IsPopular bool      `json:"isPopular"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
