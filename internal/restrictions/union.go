package restrictions

import "time"

// Union restricts an asset when any of its members does.
type Union struct {
	members []Query
}

// NewUnion flattens nested unions and drops no-op members.
func NewUnion(qs ...Query) *Union {
	u := &Union{}
	for _, q := range qs {
		switch v := q.(type) {
		case nil, Noop, *Noop:
		case *Union:
			u.members = append(u.members, v.members...)
		default:
			u.members = append(u.members, q)
		}
	}
	return u
}

func (u *Union) IsRestricted(asset Asset, dt time.Time) bool {
	for _, q := range u.members {
		if q.IsRestricted(asset, dt) {
			return true
		}
	}
	return false
}

func (u *Union) IsRestrictedBatch(assets []Asset, dt time.Time) map[Asset]bool {
	return batch(u, assets, dt)
}

func (u *Union) Members() int { return len(u.members) }

// Parts returns the flattened member queries.
func (u *Union) Parts() []Query {
	out := make([]Query, len(u.members))
	copy(out, u.members)
	return out
}
