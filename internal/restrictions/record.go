package restrictions

import "time"

// Asset is an opaque tradable-instrument token handed out by the asset resolver.
type Asset string

// Record is a single state transition for an asset, effective from EffectiveDate (inclusive).
type Record struct {
	Asset         Asset     `yaml:"asset" json:"asset"`
	EffectiveDate time.Time `yaml:"effective_date" json:"effective_date"`
	State         State     `yaml:"state" json:"state"`
}

// Transition is one entry of an asset's ordered history.
type Transition struct {
	EffectiveDate time.Time `json:"effective_date"`
	State         State     `json:"state"`
}
