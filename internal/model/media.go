package model

import "time"

// Image is one photo attached to a listing. FileID points at the stored
// blob; Position fixes the gallery order. At most one image per listing
// carries Primary.
type Image struct {
	ID          string    `db:"id" json:"id"`
	ListingID   string    `db:"listing_id" json:"listing_id"`
	FileID      string    `db:"file_id" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Position    int       `db:"position" json:"position"`
	Primary     bool      `db:"is_primary" json:"is_primary"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Document is a file attachment (offering memorandum, financials, ...)
// categorized by its type.
type Document struct {
	ID          string    `db:"id" json:"id"`
	ListingID   string    `db:"listing_id" json:"listing_id"`
	FileID      string    `db:"file_id" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
