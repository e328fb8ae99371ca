package model

import (
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
)

// Upper bounds for the financial and capacity fields. Values at or above
// these are rejected at validation time.
const (
	MaxPrice    = 10_000_000_000 // 10 billion, exclusive
	MaxRevenue  = 10_000_000_000
	MaxNumSites = 1_000_000
)

type Listing struct {
	ID           string         `db:"id" json:"id"`
	BrokerID     string         `db:"broker_id" json:"broker_id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	PropertyType string         `db:"property_type" json:"property_type"`
	Amenities    pq.StringArray `db:"amenities" json:"amenities"`

	Address   string   `db:"address" json:"address"`
	City      string   `db:"city" json:"city"`
	State     string   `db:"state" json:"state"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`

	Price         float64 `db:"price" json:"price"`
	NumSites      int     `db:"num_sites" json:"num_sites"`
	OccupancyRate float64 `db:"occupancy_rate" json:"occupancy_rate"`
	AnnualRevenue float64 `db:"annual_revenue" json:"annual_revenue"`
	CapRate       float64 `db:"cap_rate" json:"cap_rate"`

	Featured bool `db:"featured" json:"featured"`

	Status          Status `db:"status" json:"status"`
	RejectionReason string `db:"rejection_reason" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Images    []Image    `db:"-" json:"images,omitempty"`
	Documents []Document `db:"-" json:"documents,omitempty"`
}

// Validate checks the content fields against the documented bounds and
// returns an apperr.ValidationError naming the first offending field.
// Status is not checked here; it is owned by the moderation flow.
func (l *Listing) Validate() error {
	if n := len(strings.TrimSpace(l.Title)); n < 5 || n > 100 {
		return apperr.Validation("title", "must be between 5 and 100 characters")
	}
	if n := len(strings.TrimSpace(l.Description)); n < 20 || n > 2000 {
		return apperr.Validation("description", "must be between 20 and 2000 characters")
	}
	if !ValidPropertyType(l.PropertyType) {
		return apperr.Validation("property_type", "unknown property type "+l.PropertyType)
	}
	if !ValidState(l.State) {
		return apperr.Validation("state", "unknown state code "+l.State)
	}
	if l.Price < 0 || l.Price >= MaxPrice {
		return apperr.Validation("price", "must be between 0 and 10 billion")
	}
	if l.NumSites <= 0 || l.NumSites >= MaxNumSites {
		return apperr.Validation("num_sites", "must be between 1 and 1,000,000")
	}
	if l.OccupancyRate < 0 || l.OccupancyRate > 100 {
		return apperr.Validation("occupancy_rate", "must be between 0 and 100")
	}
	if l.AnnualRevenue < 0 || l.AnnualRevenue >= MaxRevenue {
		return apperr.Validation("annual_revenue", "must be between 0 and 10 billion")
	}
	if l.CapRate < 0 || l.CapRate > 100 {
		return apperr.Validation("cap_rate", "must be between 0 and 100")
	}
	return nil
}

// PrimaryImage returns the image flagged primary, or nil if none is set.
func (l *Listing) PrimaryImage() *Image {
	for i := range l.Images {
		if l.Images[i].Primary {
			return &l.Images[i]
		}
	}
	return nil
}
