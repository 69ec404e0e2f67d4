package restrictions

import (
	"sort"
	"time"
)

// TimeVersioned holds, per asset, an ascending history of state transitions and
// resolves the state in effect at any instant. An asset with no history, or queried
// before its first transition, is allowed.
type TimeVersioned struct {
	byAsset     map[Asset][]Transition
	transitions int
}

// NewTimeVersioned indexes records given in any order. Records sharing an asset and
// effective date keep their input order, so the later one takes effect.
func NewTimeVersioned(records []Record) *TimeVersioned {
	byAsset := make(map[Asset][]Transition)
	for _, r := range records {
		byAsset[r.Asset] = append(byAsset[r.Asset], Transition{EffectiveDate: r.EffectiveDate, State: r.State})
	}
	for _, h := range byAsset {
		sort.SliceStable(h, func(i, j int) bool { return h[i].EffectiveDate.Before(h[j].EffectiveDate) })
	}
	return &TimeVersioned{byAsset: byAsset, transitions: len(records)}
}

func (t *TimeVersioned) IsRestricted(asset Asset, dt time.Time) bool {
	return t.StateAt(asset, dt) == Frozen
}

func (t *TimeVersioned) IsRestrictedBatch(assets []Asset, dt time.Time) map[Asset]bool {
	return batch(t, assets, dt)
}

// StateAt returns the state of the latest transition with an effective date at or before dt.
func (t *TimeVersioned) StateAt(asset Asset, dt time.Time) State {
	h := t.byAsset[asset]
	// first transition strictly after dt; everything before it is in effect
	i := sort.Search(len(h), func(i int) bool { return h[i].EffectiveDate.After(dt) })
	if i == 0 {
		return Allowed
	}
	return h[i-1].State
}

// History returns a copy of the ordered transitions for asset, or nil.
func (t *TimeVersioned) History(asset Asset) []Transition {
	h, ok := t.byAsset[asset]
	if !ok {
		return nil
	}
	out := make([]Transition, len(h))
	copy(out, h)
	return out
}

func (t *TimeVersioned) Assets() int      { return len(t.byAsset) }
func (t *TimeVersioned) Transitions() int { return t.transitions }
