package loader

import (
	"errors"
	"fmt"

	"tradegate/internal/config"
	"tradegate/internal/restrictions"
)

var (
	ErrUnknownMode         = errors.New("unknown restrictions mode")
	ErrRecordsInStaticMode = errors.New("dated restriction records in static mode")
)

// Build constructs the query variant selected by cfg.Mode.
func Build(cfg config.Restrictions) (restrictions.Query, error) {
	var src Source
	if cfg.File != "" && cfg.Mode != config.ModeNoop {
		var err error
		if src, err = LoadFile(cfg.File); err != nil {
			return nil, err
		}
	}
	static := src.Static
	for _, a := range cfg.Assets {
		static = append(static, restrictions.Asset(a))
	}

	switch cfg.Mode {
	case config.ModeNoop, "":
		return restrictions.NewNoop(), nil
	case config.ModeStatic:
		// dated rows would otherwise be dropped and leave those assets tradable
		if len(src.Records) > 0 {
			return nil, fmt.Errorf("%w: %s has %d records, use mode %s", ErrRecordsInStaticMode, cfg.File, len(src.Records), config.ModeTimeVersioned)
		}
		return restrictions.NewStatic(static), nil
	case config.ModeTimeVersioned:
		tv := restrictions.NewTimeVersioned(src.Records)
		if len(static) == 0 {
			return tv, nil
		}
		return restrictions.NewUnion(tv, restrictions.NewStatic(static)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
}

// IndexSize reports how many assets and transitions back q.
func IndexSize(q restrictions.Query) (assets, transitions int) {
	switch v := q.(type) {
	case *restrictions.TimeVersioned:
		return v.Assets(), v.Transitions()
	case *restrictions.Static:
		return v.Len(), 0
	case *restrictions.Union:
		for _, p := range v.Parts() {
			a, t := IndexSize(p)
			assets += a
			transitions += t
		}
	case *Provider:
		return IndexSize(v.Current())
	}
	return assets, transitions
}
