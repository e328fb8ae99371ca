package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

type ImageRepository struct {
	DB *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// Insert appends the image at the end of the listing's gallery. The first
// image of a listing becomes primary automatically.
func (r *ImageRepository) Insert(ctx context.Context, img *model.Image) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ImageRepository.Insert: begin: %w", err)
	}
	defer tx.Rollback()

	// MAX+1 rather than COUNT so positions stay unique after deletions
	// leave gaps in the sequence.
	var next int
	if err := tx.GetContext(ctx, &next,
		`SELECT COALESCE(MAX(position)+1, 0) FROM listing_images WHERE listing_id = $1`, img.ListingID); err != nil {
		return fmt.Errorf("ImageRepository.Insert: position: %w", err)
	}
	img.Position = next
	img.Primary = next == 0

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO listing_images
			(id, listing_id, file_id, file_name, content_type, position, is_primary, created_at)
		VALUES
			(:id, :listing_id, :file_id, :file_name, :content_type, :position, :is_primary, :created_at)
	`, img)
	if err != nil {
		return fmt.Errorf("ImageRepository.Insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ImageRepository.Insert: commit: %w", err)
	}
	return nil
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var img model.Image
	err := r.DB.GetContext(ctx, &img, `SELECT * FROM listing_images WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ImageRepository.GetByID: %w", err)
	}
	return &img, nil
}

func (r *ImageRepository) ListByListing(ctx context.Context, listingID string) ([]model.Image, error) {
	var images []model.Image
	err := r.DB.SelectContext(ctx, &images, `
		SELECT * FROM listing_images
		WHERE listing_id = $1
		ORDER BY position ASC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("ImageRepository.ListByListing: %w", err)
	}
	return images, nil
}

// ListByListings loads images for a batch of listings in one query, grouped
// by listing id. Used to decorate search results.
func (r *ImageRepository) ListByListings(ctx context.Context, listingIDs []string) (map[string][]model.Image, error) {
	if len(listingIDs) == 0 {
		return map[string][]model.Image{}, nil
	}
	var images []model.Image
	err := r.DB.SelectContext(ctx, &images, `
		SELECT * FROM listing_images
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, position ASC
	`, pq.Array(listingIDs))
	if err != nil {
		return nil, fmt.Errorf("ImageRepository.ListByListings: %w", err)
	}
	grouped := make(map[string][]model.Image, len(listingIDs))
	for _, img := range images {
		grouped[img.ListingID] = append(grouped[img.ListingID], img)
	}
	return grouped, nil
}

// SetPrimary makes the given image the listing's only primary image,
// clearing the flag from its siblings in the same transaction.
func (r *ImageRepository) SetPrimary(ctx context.Context, listingID, imageID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ImageRepository.SetPrimary: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE listing_images SET is_primary = FALSE WHERE listing_id = $1`, listingID); err != nil {
		return fmt.Errorf("ImageRepository.SetPrimary: clear: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE listing_images SET is_primary = TRUE WHERE id = $1 AND listing_id = $2`, imageID, listingID)
	if err != nil {
		return fmt.Errorf("ImageRepository.SetPrimary: set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ImageRepository.SetPrimary: commit: %w", err)
	}
	return nil
}

// Delete removes the image row and, if it was primary, promotes the first
// remaining image so a listing with images always has a primary one.
func (r *ImageRepository) Delete(ctx context.Context, listingID, imageID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ImageRepository.Delete: begin: %w", err)
	}
	defer tx.Rollback()

	var wasPrimary bool
	err = tx.GetContext(ctx, &wasPrimary,
		`DELETE FROM listing_images WHERE id = $1 AND listing_id = $2 RETURNING is_primary`, imageID, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("ImageRepository.Delete: %w", err)
	}
	if wasPrimary {
		if _, err := tx.ExecContext(ctx, `
			UPDATE listing_images SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM listing_images
				WHERE listing_id = $1
				ORDER BY position ASC LIMIT 1
			)
		`, listingID); err != nil {
			return fmt.Errorf("ImageRepository.Delete: promote: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ImageRepository.Delete: commit: %w", err)
	}
	return nil
}
