// Package restrictions answers whether an asset is disallowed from trading at a given instant.
//
// All Query implementations are immutable once built and safe for concurrent use
// without locking.
package restrictions

import "time"

type Query interface {
	// IsRestricted reports whether asset is frozen at dt.
	IsRestricted(asset Asset, dt time.Time) bool
	// IsRestrictedBatch maps every asset in assets to IsRestricted(asset, dt).
	IsRestrictedBatch(assets []Asset, dt time.Time) map[Asset]bool
}

func batch(q Query, assets []Asset, dt time.Time) map[Asset]bool {
	out := make(map[Asset]bool, len(assets))
	for _, a := range assets {
		out[a] = q.IsRestricted(a, dt)
	}
	return out
}

// Variant returns a short label for the concrete implementation behind q, used in logs and metrics.
func Variant(q Query) string {
	switch q.(type) {
	case Noop, *Noop:
		return "noop"
	case *Static:
		return "static"
	case *TimeVersioned:
		return "time_versioned"
	case *Union:
		return "union"
	}
	if v, ok := q.(interface{ Variant() string }); ok {
		return v.Variant()
	}
	return "custom"
}
