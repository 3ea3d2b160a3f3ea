package common

import (
	"fmt"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// GeoIP annotates addresses with the location found in a GeoIP2 city database.
type GeoIP struct {
	reader *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &GeoIP{reader: reader}, nil
}

// Locate returns "<country>, <city>" for ip, or an empty string when the
// database has nothing for it.
func (g *GeoIP) Locate(ip netip.Addr) string {
	if g == nil || g.reader == nil {
		return ""
	}
	record, err := g.reader.City(ip.AsSlice())
	if err != nil {
		logger.Debug("geoip lookup failed", zap.String("ip", ip.String()), zap.Error(err))
		return ""
	}
	country := record.Country.IsoCode
	city := record.City.Names["en"]
	switch {
	case country == "" && city == "":
		return ""
	case city == "":
		return country
	case country == "":
		return city
	}
	return country + ", " + city
}

func (g *GeoIP) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}
