package restrictions

import "time"

// Static restricts a fixed set of assets for every dt.
type Static struct {
	set map[Asset]struct{}
}

func NewStatic(assets []Asset) *Static {
	set := make(map[Asset]struct{}, len(assets))
	for _, a := range assets {
		set[a] = struct{}{}
	}
	return &Static{set: set}
}

func (s *Static) IsRestricted(asset Asset, _ time.Time) bool {
	_, ok := s.set[asset]
	return ok
}

func (s *Static) IsRestrictedBatch(assets []Asset, dt time.Time) map[Asset]bool {
	return batch(s, assets, dt)
}

func (s *Static) Len() int { return len(s.set) }
