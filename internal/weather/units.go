package weather

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	SymbolCelsius    = "°C"
	SymbolFahrenheit = "°F"
)

// DefaultFahrenheitRegions lists the regions that still display Fahrenheit.
var DefaultFahrenheitRegions = []string{"US", "LR", "MM"}

// UnitPolicy picks the temperature unit symbol for a region.
type UnitPolicy struct {
	FahrenheitRegions []string
}

// NewUnitPolicy returns a policy over the given regions, or the defaults when
// regions is empty.
func NewUnitPolicy(regions []string) UnitPolicy {
	if len(regions) == 0 {
		regions = DefaultFahrenheitRegions
	}
	return UnitPolicy{FahrenheitRegions: regions}
}

// SymbolFor returns °F for configured regions and °C for everything else.
func (p UnitPolicy) SymbolFor(region string) string {
	region = strings.TrimSpace(region)
	for _, r := range p.FahrenheitRegions {
		if strings.EqualFold(r, region) {
			return SymbolFahrenheit
		}
	}
	return SymbolCelsius
}

// RegionFromLocale extracts the region subtag from a POSIX ("en_US.UTF-8")
// or BCP 47 ("en-US") locale. It returns "" when no explicit region is present.
func RegionFromLocale(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
