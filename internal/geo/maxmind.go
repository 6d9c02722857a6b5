package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLookup reads country records from a local MMDB file.
type MaxMindLookup struct {
	db *geoip2.Reader
}

// OpenMaxMind opens a GeoLite2/GeoIP2 country database.
func OpenMaxMind(path string) (*MaxMindLookup, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %q: %w", path, err)
	}
	return &MaxMindLookup{db: db}, nil
}

// CountryCode returns the ISO code for ip, or "" when the database has no
// record for it.
func (l *MaxMindLookup) CountryCode(ip net.IP) (string, error) {
	record, err := l.db.Country(ip)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

func (l *MaxMindLookup) Close() error {
	return l.db.Close()
}
