package models

import "time"

type InventoryItem struct {
	ID           string    `json:"id" db:"id"`
	SKU          string    `json:"sku" db:"sku"`
	Name         string    `json:"name" db:"name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
	Location     *string   `json:"location" db:"location"`
	Organization *string   `json:"organization" db:"organization"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
