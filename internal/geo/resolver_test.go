package geo

import (
	"net"
	"testing"

	"github.com/aryaawcksn/counter/internal/domain"
)

// stubLookup resolves from a fixed table, like a tiny MMDB.
type stubLookup struct {
	countries map[string]string
}

func (s *stubLookup) CountryCode(ip net.IP) (string, error) {
	return s.countries[ip.String()], nil
}

func newTestResolver() *Resolver {
	return NewResolver(&stubLookup{countries: map[string]string{
		"103.28.12.1": "ID",
		"8.8.8.8":     "US",
	}})
}

func TestClientAddressPriority(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name     string
		peerAddr string
		headers  domain.VisitHeaders
		want     string
	}{
		{
			name:     "forwarded-for first entry wins",
			peerAddr: "10.0.0.1:40000",
			headers: domain.VisitHeaders{
				ForwardedFor:   "8.8.8.8, 172.16.0.1",
				RealIP:         "1.1.1.1",
				CFConnectingIP: "2.2.2.2",
			},
			want: "8.8.8.8",
		},
		{
			name:     "real-ip when no forwarded-for",
			peerAddr: "10.0.0.1:40000",
			headers:  domain.VisitHeaders{RealIP: "1.1.1.1"},
			want:     "1.1.1.1",
		},
		{
			name:     "cf-connecting-ip when nothing else",
			peerAddr: "10.0.0.1:40000",
			headers:  domain.VisitHeaders{CFConnectingIP: "2.2.2.2"},
			want:     "2.2.2.2",
		},
		{
			name:     "peer address with port stripped",
			peerAddr: "10.0.0.1:40000",
			want:     "10.0.0.1",
		},
		{
			name:     "bracketed ipv6 peer",
			peerAddr: "[2001:db8::1]:443",
			want:     "2001:db8::1",
		},
		{
			name:     "bare peer address kept as-is",
			peerAddr: "10.0.0.1",
			want:     "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ClientAddress(tt.peerAddr, tt.headers); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveLookupWinsOverHeader(t *testing.T) {
	r := newTestResolver()

	got := r.Resolve("10.0.0.1:40000", domain.VisitHeaders{
		ForwardedFor: "103.28.12.1",
		CFCountry:    "US",
	})
	if got.CountryCode != "ID" || got.Source != domain.GeoSourceLookupDB {
		t.Fatalf("expected ID from lookup-db, got %+v", got)
	}
}

func TestResolveHeaderFallback(t *testing.T) {
	r := newTestResolver()

	// 192.0.2.55 is not in the lookup table.
	got := r.Resolve("192.0.2.55:40000", domain.VisitHeaders{CFCountry: "sg"})
	if got.CountryCode != "SG" || got.Source != domain.GeoSourceHeader {
		t.Fatalf("expected SG from header-fallback, got %+v", got)
	}
}

func TestResolveHeaderUnknownSentinelIgnored(t *testing.T) {
	r := newTestResolver()

	got := r.Resolve("192.0.2.55:40000", domain.VisitHeaders{CFCountry: "XX"})
	if got.CountryCode != domain.CountryUnknown || got.Source != domain.GeoSourceUnresolved {
		t.Fatalf("expected Unknown for XX sentinel, got %+v", got)
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := newTestResolver()

	got := r.Resolve("192.0.2.55:40000", domain.VisitHeaders{})
	if got.CountryCode != domain.CountryUnknown || got.Source != domain.GeoSourceUnresolved {
		t.Fatalf("expected Unknown/unresolved, got %+v", got)
	}
}

func TestResolveWithoutLookupDatabase(t *testing.T) {
	r := NewResolver(nil)

	got := r.Resolve("8.8.8.8:40000", domain.VisitHeaders{CFCountry: "US"})
	if got.CountryCode != "US" || got.Source != domain.GeoSourceHeader {
		t.Fatalf("expected header fallback without a database, got %+v", got)
	}
}

func TestResolveUnparsableAddress(t *testing.T) {
	r := newTestResolver()

	got := r.Resolve("not-an-address", domain.VisitHeaders{})
	if got.CountryCode != domain.CountryUnknown || got.Source != domain.GeoSourceUnresolved {
		t.Fatalf("expected Unknown for unparsable address, got %+v", got)
	}
}
