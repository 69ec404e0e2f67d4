package restrictions

import (
	"errors"
	"fmt"
	"strings"
)

// State is the restriction state of an asset at a point in time.
type State uint8

const (
	Allowed State = iota
	Frozen
)

var ErrUnknownState = errors.New("unknown restriction state")

func (s State) String() string {
	switch s {
	case Allowed:
		return "ALLOWED"
	case Frozen:
		return "FROZEN"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ParseState accepts the state names case-insensitively.
func ParseState(v string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "ALLOWED":
		return Allowed, nil
	case "FROZEN":
		return Frozen, nil
	}
	return Allowed, fmt.Errorf("%w: %q", ErrUnknownState, v)
}

func (s State) MarshalText() ([]byte, error) {
	if s != Allowed && s != Frozen {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
