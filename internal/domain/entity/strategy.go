package entity

import "time"

// Strategy is a saved rebalancing setup that can be run on demand or by the
// periodic monitor. Description is the free-text allocation the strategy was
// created from; Request holds the parsed, ready-to-run form.
type Strategy struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Request     RebalanceRequest `json:"request"`
	CreatedAt   time.Time        `json:"created_at"`
}
