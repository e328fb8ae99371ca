// Package filter holds the search configuration a browsing user builds up
// and the local predicate/sort engine that evaluates it against an
// in-memory listing collection. The SQL search path in the repository
// implements the same semantics; internal/search keeps the two in step.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortPrice     SortKey = "price"
	SortNumSites  SortKey = "num_sites"
	SortCapRate   SortKey = "cap_rate"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortCreatedAt, SortPrice, SortNumSites, SortCapRate:
		return SortKey(s), true
	case "":
		return SortCreatedAt, true
	}
	return "", false
}

// Config is the transient search intent of one browsing session. Every
// field is optional: the zero Config matches every publicly visible
// listing. Numeric maxima use 0 as "unset", so a max of 0 imposes no upper
// bound. Config is never persisted.
type Config struct {
	Search string

	PriceMin float64
	PriceMax float64
	SitesMin int
	SitesMax int

	MinCapRate   float64
	MinOccupancy float64

	RevenueMin float64
	RevenueMax float64

	States        []string
	PropertyTypes []string
	Amenities     []string

	ListedWithinDays int

	FeaturedOnly   bool
	WithImagesOnly bool

	SortBy   SortKey
	SortDesc bool

	Limit  int
	Offset int
}

// IsZero reports whether no filtering criteria are active. Sort and paging
// do not count: they shape the result but never exclude a listing.
func (c Config) IsZero() bool {
	return c.Search == "" &&
		c.PriceMin == 0 && c.PriceMax == 0 &&
		c.SitesMin == 0 && c.SitesMax == 0 &&
		c.MinCapRate == 0 && c.MinOccupancy == 0 &&
		c.RevenueMin == 0 && c.RevenueMax == 0 &&
		len(c.States) == 0 && len(c.PropertyTypes) == 0 && len(c.Amenities) == 0 &&
		c.ListedWithinDays == 0 &&
		!c.FeaturedOnly && !c.WithImagesOnly
}

// Matches reports whether the listing satisfies every active criterion in
// the config. Criteria are conjunctive; within a multi-select criterion
// (states, property types, amenities) any selected value matches. Range
// bounds are inclusive. Only publicly visible listings ever match.
func Matches(l model.Listing, c Config, now time.Time) bool {
	if !l.Status.VisibleToPublic() {
		return false
	}
	if c.Search != "" && !matchesText(l, c.Search) {
		return false
	}
	if l.Price < c.PriceMin {
		return false
	}
	if c.PriceMax > 0 && l.Price > c.PriceMax {
		return false
	}
	if l.NumSites < c.SitesMin {
		return false
	}
	if c.SitesMax > 0 && l.NumSites > c.SitesMax {
		return false
	}
	if l.CapRate < c.MinCapRate {
		return false
	}
	if l.OccupancyRate < c.MinOccupancy {
		return false
	}
	if l.AnnualRevenue < c.RevenueMin {
		return false
	}
	if c.RevenueMax > 0 && l.AnnualRevenue > c.RevenueMax {
		return false
	}
	if len(c.States) > 0 && !containsFold(c.States, l.State) {
		return false
	}
	if len(c.PropertyTypes) > 0 && !containsFold(c.PropertyTypes, l.PropertyType) {
		return false
	}
	if len(c.Amenities) > 0 && !overlapsFold(c.Amenities, l.Amenities) {
		return false
	}
	if c.ListedWithinDays > 0 {
		cutoff := now.AddDate(0, 0, -c.ListedWithinDays)
		if l.CreatedAt.Before(cutoff) {
			return false
		}
	}
	if c.FeaturedOnly && !l.Featured {
		return false
	}
	if c.WithImagesOnly && len(l.Images) == 0 {
		return false
	}
	return true
}

// matchesText is a case-insensitive substring match over the four
// searchable text fields; a hit on any one of them is a match.
func matchesText(l model.Listing, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{l.Title, l.Description, l.City, l.State} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func overlapsFold(selected, have []string) bool {
	for _, s := range selected {
		if containsFold(have, s) {
			return true
		}
	}
	return false
}

// Apply filters ls down to the listings matching c, sorts them by the
// configured key, and applies offset/limit. The sort is stable: listings
// that compare equal keep their input order, which is the documented
// tie-break.
func Apply(ls []model.Listing, c Config, now time.Time) []model.Listing {
	out := make([]model.Listing, 0, len(ls))
	for _, l := range ls {
		if Matches(l, c, now) {
			out = append(out, l)
		}
	}
	sortListings(out, c)
	return page(out, c.Offset, c.Limit)
}

func sortListings(ls []model.Listing, c Config) {
	key := c.SortBy
	if key == "" {
		key = SortCreatedAt
	}
	less := func(a, b model.Listing) bool {
		switch key {
		case SortPrice:
			return a.Price < b.Price
		case SortNumSites:
			return a.NumSites < b.NumSites
		case SortCapRate:
			return a.CapRate < b.CapRate
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(ls, func(i, j int) bool {
		if c.SortDesc {
			return less(ls[j], ls[i])
		}
		return less(ls[i], ls[j])
	})
}

func page(ls []model.Listing, offset, limit int) []model.Listing {
	if offset > 0 {
		if offset >= len(ls) {
			return []model.Listing{}
		}
		ls = ls[offset:]
	}
	if limit > 0 && limit < len(ls) {
		ls = ls[:limit]
	}
	return ls
}
