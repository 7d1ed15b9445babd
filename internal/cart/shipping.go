package cart

import (
	"strings"

	"github.com/fjod/omnex-storefront/internal/domain"
)

// ShippingPolicy is a two-tier flat rate: one domestic country, everything
// else international.
type ShippingPolicy struct {
	DomesticCountry   string
	DomesticRate      float64
	InternationalRate float64
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		DomesticCountry:   "India",
		DomesticRate:      100,
		InternationalRate: 500,
	}
}

// IsDomestic reports whether country is the domestic tier. An empty country
// counts as domestic; otherwise matching ignores case and surrounding
// whitespace, so a whitespace-only value is international.
func (p ShippingPolicy) IsDomestic(country string) bool {
	if country == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(country), strings.TrimSpace(p.DomesticCountry))
}

func (p ShippingPolicy) Cost(country string) float64 {
	if p.IsDomestic(country) {
		return p.DomesticRate
	}
	return p.InternationalRate
}

// Region names the delivery region for country using the same comparison as Cost.
func (p ShippingPolicy) Region(country string) string {
	if p.IsDomestic(country) {
		return p.DomesticCountry
	}
	return domain.RegionInternational
}
