package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// FromQuery builds a Config from URL query parameters. Unknown parameters
// are ignored; malformed values for known parameters are validation errors
// so the caller sees a form error instead of silently unfiltered results.
func FromQuery(values url.Values) (Config, error) {
	c := Config{Limit: defaultLimit}

	c.Search = strings.TrimSpace(values.Get("search"))

	var err error
	if c.PriceMin, err = floatParam(values, "min_price"); err != nil {
		return c, err
	}
	if c.PriceMax, err = floatParam(values, "max_price"); err != nil {
		return c, err
	}
	if c.SitesMin, err = intParam(values, "min_sites"); err != nil {
		return c, err
	}
	if c.SitesMax, err = intParam(values, "max_sites"); err != nil {
		return c, err
	}
	if c.MinCapRate, err = floatParam(values, "min_cap_rate"); err != nil {
		return c, err
	}
	if c.MinOccupancy, err = floatParam(values, "min_occupancy"); err != nil {
		return c, err
	}
	if c.RevenueMin, err = floatParam(values, "min_revenue"); err != nil {
		return c, err
	}
	if c.RevenueMax, err = floatParam(values, "max_revenue"); err != nil {
		return c, err
	}
	if c.ListedWithinDays, err = intParam(values, "listed_within_days"); err != nil {
		return c, err
	}

	c.States = listParam(values, "states")
	c.PropertyTypes = listParam(values, "property_types")
	c.Amenities = listParam(values, "amenities")

	c.FeaturedOnly = boolParam(values, "featured")
	c.WithImagesOnly = boolParam(values, "has_images")

	sortBy, ok := ParseSortKey(values.Get("sort_by"))
	if !ok {
		return c, apperr.Validation("sort_by", "unknown sort key "+values.Get("sort_by"))
	}
	c.SortBy = sortBy
	c.SortDesc = values.Get("sort_dir") != "asc"

	if v, err := intParam(values, "limit"); err != nil {
		return c, err
	} else if v > 0 {
		c.Limit = v
	}
	if c.Limit > maxLimit {
		c.Limit = maxLimit
	}
	if c.Offset, err = intParam(values, "offset"); err != nil {
		return c, err
	}

	if preset := values.Get("preset"); preset != "" {
		if err := applyPreset(&c, preset); err != nil {
			return c, err
		}
	}
	return c, nil
}

// applyPreset expands a quick-filter name into concrete criteria. Presets
// never loosen explicitly supplied values below their own floor.
func applyPreset(c *Config, name string) error {
	switch name {
	case "under-1m":
		c.PriceMax = 1_000_000
	case "high-cap":
		if c.MinCapRate < 8 {
			c.MinCapRate = 8
		}
	case "large-parks":
		if c.SitesMin < 100 {
			c.SitesMin = 100
		}
	case "new-listings":
		c.ListedWithinDays = 30
		c.SortBy = SortCreatedAt
		c.SortDesc = true
	default:
		return apperr.Validation("preset", "unknown preset "+name)
	}
	return nil
}

func floatParam(values url.Values, key string) (float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, apperr.Validation(key, "must be a non-negative number")
	}
	return v, nil
}

func intParam(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation(key, "must be a non-negative integer")
	}
	return v, nil
}

// listParam accepts both repeated parameters (?states=TX&states=CO) and a
// single comma-separated value (?states=TX,CO).
func listParam(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func boolParam(values url.Values, key string) bool {
	switch strings.ToLower(values.Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
