package model

import "time"

// PairlistSnapshot is a published pair list as stored by sinks and remote producers.
type PairlistSnapshot struct {
	RunID     string    `json:"run_id,omitempty"`
	Producer  string    `json:"producer,omitempty"`
	Pairs     []string  `json:"pairs"`
	UpdatedAt time.Time `json:"updated_at"`
}
