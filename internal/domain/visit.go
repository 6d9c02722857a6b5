package domain

import (
	"sort"
	"time"
)

// CountryUnknown is the sentinel country code used when no resolution
// source yields a value.
const CountryUnknown = "Unknown"

// GeoSource identifies which step of the resolution chain produced a result.
type GeoSource string

const (
	GeoSourceLookupDB   GeoSource = "lookup-db"
	GeoSourceHeader     GeoSource = "header-fallback"
	GeoSourceUnresolved GeoSource = "unresolved"
)

// GeoResult is the outcome of resolving a client address to a country.
// It is ephemeral and never persisted.
type GeoResult struct {
	CountryCode string    `json:"country_code"`
	Source      GeoSource `json:"source"`
}

// Counter is a single visit counter, created implicitly on first increment.
type Counter struct {
	ID        string    `bson:"_id" json:"id"`
	Count     int64     `bson:"count" json:"count"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CountryCount is one country's sub-count within a breakdown.
type CountryCount struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

// VisitHeaders carries the request headers the resolver is allowed to
// inspect. All values are spoofable; they are trusted only in the order
// documented on the resolver.
type VisitHeaders struct {
	ForwardedFor   string
	RealIP         string
	CFConnectingIP string
	CFCountry      string
}

// VisitEvent is one inbound visit to a counter.
// CooldownTTL is optional; nil means the configured default applies.
type VisitEvent struct {
	CounterID     string
	ClientAddress string
	Headers       VisitHeaders
	CooldownTTL   *time.Duration
}

// VisitOutcome is the result of a processed visit. Either the visit was
// counted (Counted true, Count and CountryCode set) or it was suppressed
// by the cooldown (Counted false, RetryAfter set).
type VisitOutcome struct {
	Counted     bool          `json:"counted"`
	Count       int64         `json:"count,omitempty"`
	CountryCode string        `json:"country_code,omitempty"`
	RetryAfter  time.Duration `json:"retry_after,omitempty"`
}

// Admission is the cooldown guard's decision for a single visit.
type Admission struct {
	Admitted   bool
	RetryAfter time.Duration
}

// SortCountryCounts orders counts descending, ties broken by country code
// ascending so results are deterministic.
func SortCountryCounts(counts []CountryCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Code < counts[j].Code
	})
}
