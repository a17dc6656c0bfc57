package domain

import "time"

// Currency is an allow-list entry. Support is consulted at entity creation
// only: de-listing a currency later never invalidates existing escrows or
// payment links.
type Currency struct {
	Code      string    `json:"code"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
