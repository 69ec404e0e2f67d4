package restrictions

import "time"

// Noop contains no restrictions.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) IsRestricted(Asset, time.Time) bool { return false }

func (Noop) IsRestrictedBatch(assets []Asset, _ time.Time) map[Asset]bool {
	out := make(map[Asset]bool, len(assets))
	for _, a := range assets {
		out[a] = false
	}
	return out
}
