package model

import (
	"strings"
	"testing"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
)

func validListing() Listing {
	return Listing{
		Title:         "Lakefront RV Resort",
		Description:   "A well-run lakefront RV resort with strong seasonal demand.",
		PropertyType:  "rv_park",
		State:         "TX",
		City:          "Austin",
		Price:         4_500_000,
		NumSites:      150,
		OccupancyRate: 78,
		AnnualRevenue: 1_200_000,
		CapRate:       9.5,
	}
}

func TestValidateOK(t *testing.T) {
	l := validListing()
	if err := l.Validate(); err != nil {
		t.Fatalf("valid listing rejected: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*Listing)
	}{
		{"title", func(l *Listing) { l.Title = "RV" }},
		{"title", func(l *Listing) { l.Title = strings.Repeat("x", 101) }},
		{"description", func(l *Listing) { l.Description = "too short" }},
		{"description", func(l *Listing) { l.Description = strings.Repeat("x", 2001) }},
		{"property_type", func(l *Listing) { l.PropertyType = "castle" }},
		{"state", func(l *Listing) { l.State = "ZZ" }},
		{"price", func(l *Listing) { l.Price = -1 }},
		{"price", func(l *Listing) { l.Price = MaxPrice }},
		{"num_sites", func(l *Listing) { l.NumSites = 0 }},
		{"num_sites", func(l *Listing) { l.NumSites = MaxNumSites }},
		{"occupancy_rate", func(l *Listing) { l.OccupancyRate = 101 }},
		{"annual_revenue", func(l *Listing) { l.AnnualRevenue = MaxRevenue }},
		{"cap_rate", func(l *Listing) { l.CapRate = -0.5 }},
	}
	for _, tc := range cases {
		l := validListing()
		tc.mutate(&l)
		err := l.Validate()
		ve, ok := apperr.AsValidation(err)
		if !ok {
			t.Fatalf("%s: expected validation error, got %v", tc.field, err)
		}
		if ve.Field != tc.field {
			t.Fatalf("expected error on %s, got %s", tc.field, ve.Field)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"pending":    StatusPending,
		"Approved":   StatusApproved,
		" REJECTED ": StatusRejected,
	} {
		got, ok := ParseStatus(raw)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatalf("unknown status must not parse")
	}
}

func TestActorCapabilities(t *testing.T) {
	l := Listing{BrokerID: "broker-1"}
	admin := Actor{ID: "admin-1", Roles: []string{RoleAdmin}}
	owner := Actor{ID: "broker-1", Roles: []string{RoleBroker}}
	other := Actor{ID: "broker-2", Roles: []string{RoleBroker}}

	if !admin.CanEdit(&l) || !owner.CanEdit(&l) {
		t.Fatalf("admin and owner must be able to edit")
	}
	if other.CanEdit(&l) {
		t.Fatalf("unrelated broker must not edit")
	}
	if (Actor{}).CanEdit(&l) {
		t.Fatalf("anonymous actor must not edit")
	}
}
