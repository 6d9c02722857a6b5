// Package geo resolves client network addresses to best-effort country
// codes. Resolution order: MaxMind lookup on the extracted client address,
// then the CDN-provided country header, then the Unknown sentinel.
//
// The extracted address and the CDN header are both spoofable by clients
// that do not sit behind the expected proxy chain. That trust model is
// inherited from the deployment (the service runs behind Cloudflare) and
// is accepted as-is; the only defense is the fixed source ordering.
package geo

import (
	"net"
	"strings"

	"github.com/aryaawcksn/counter/internal/domain"
)

// cfUnknownCountry is Cloudflare's sentinel for an unresolvable country.
const cfUnknownCountry = "XX"

// Lookup maps an IP address to an ISO-3166 alpha-2 country code. An empty
// code with a nil error means the address is not in the database.
type Lookup interface {
	CountryCode(ip net.IP) (string, error)
}

// Resolver derives client identity and country attribution for a visit.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a resolver. lookup may be nil when no local database
// is configured; resolution then falls through to the CDN header.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ClientAddress extracts the candidate client address, in priority order:
// the first entry of the proxy chain header, the real-client-IP header,
// the CDN connecting-IP header, then the transport peer address. The same
// address keys cooldown records.
func (r *Resolver) ClientAddress(peerAddr string, h domain.VisitHeaders) string {
	if h.ForwardedFor != "" {
		first := strings.TrimSpace(strings.Split(h.ForwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if addr := strings.TrimSpace(h.RealIP); addr != "" {
		return addr
	}
	if addr := strings.TrimSpace(h.CFConnectingIP); addr != "" {
		return addr
	}
	return stripPort(peerAddr)
}

// Resolve maps the visit to a country code, first match wins.
func (r *Resolver) Resolve(peerAddr string, h domain.VisitHeaders) domain.GeoResult {
	addr := r.ClientAddress(peerAddr, h)

	if r.lookup != nil {
		if ip := net.ParseIP(addr); ip != nil {
			if code, err := r.lookup.CountryCode(ip); err == nil && code != "" {
				return domain.GeoResult{CountryCode: code, Source: domain.GeoSourceLookupDB}
			}
		}
	}

	if code := strings.ToUpper(strings.TrimSpace(h.CFCountry)); code != "" && code != cfUnknownCountry {
		return domain.GeoResult{CountryCode: code, Source: domain.GeoSourceHeader}
	}

	return domain.GeoResult{CountryCode: domain.CountryUnknown, Source: domain.GeoSourceUnresolved}
}

// stripPort removes a :port suffix if present, leaving bare addresses and
// bracketed IPv6 literals intact.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
