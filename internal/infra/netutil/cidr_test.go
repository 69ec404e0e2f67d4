package netutil

import (
	"net"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseCIDRs(t *testing.T) {
	nets := ParseCIDRs([]string{"127.0.0.0/8", "bogus", "::1/128"}, zerolog.Nop())
	if len(nets) != 2 {
		t.Fatalf("expected 2 networks, got %d", len(nets))
	}
	if !nets[1].Contains(net.ParseIP("::1")) {
		t.Fatalf("expected ::1 in second network")
	}
}
