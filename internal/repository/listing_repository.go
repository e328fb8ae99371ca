package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/filter"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

const listingColumns = `id, broker_id, title, description, property_type, amenities,
	address, city, state, latitude, longitude,
	price, num_sites, occupancy_rate, annual_revenue, cap_rate,
	featured, status, rejection_reason, created_at, updated_at`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO listings
			(id, broker_id, title, description, property_type, amenities,
			 address, city, state, latitude, longitude,
			 price, num_sites, occupancy_rate, annual_revenue, cap_rate,
			 featured, status, rejection_reason, created_at, updated_at)
		VALUES
			(:id, :broker_id, :title, :description, :property_type, :amenities,
			 :address, :city, :state, :latitude, :longitude,
			 :price, :num_sites, :occupancy_rate, :annual_revenue, :cap_rate,
			 :featured, :status, :rejection_reason, :created_at, :updated_at)
	`, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	return &l, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	res, err := r.DB.NamedExecContext(ctx, `
		UPDATE listings SET
			title          = :title,
			description    = :description,
			property_type  = :property_type,
			amenities      = :amenities,
			address        = :address,
			city           = :city,
			state          = :state,
			latitude       = :latitude,
			longitude      = :longitude,
			price          = :price,
			num_sites      = :num_sites,
			occupancy_rate = :occupancy_rate,
			annual_revenue = :annual_revenue,
			cap_rate       = :cap_rate,
			featured       = :featured,
			updated_at     = :updated_at
		WHERE id = :id
	`, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	return noRowsToNotFound(res)
}

// UpdateStatus persists a moderation change. Status writes go through this
// method only; content updates never touch the status columns.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id string, status model.Status, reason string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4
	`, string(status), reason, updatedAt, id)
	if err != nil {
		return fmt.Errorf("ListingRepository.UpdateStatus: %w", err)
	}
	return noRowsToNotFound(res)
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	return noRowsToNotFound(res)
}

// Search is the remote query path of the filter composer: it translates a
// filter.Config into SQL with the same semantics as filter.Matches.
// Criteria are conjunctive; multi-select criteria match any selected value.
func (r *ListingRepository) Search(ctx context.Context, cfg filter.Config, now time.Time) ([]model.Listing, error) {
	query, args := buildSearchQuery(cfg, now)

	var listings []model.Listing
	if err := r.DB.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.Search: %w", err)
	}
	return listings, nil
}

// buildSearchQuery folds query values the same way the rows are stored
// (states upper, property types and amenities lower) so the SQL predicate
// and filter.Matches agree on every input.
func buildSearchQuery(cfg filter.Config, now time.Time) (string, []interface{}) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE (status = 'approved' OR status = '')`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if cfg.Search != "" {
		p := arg("%" + escapeLike(cfg.Search) + "%")
		query += fmt.Sprintf(" AND (title ILIKE %[1]s OR description ILIKE %[1]s OR city ILIKE %[1]s OR state ILIKE %[1]s)", p)
	}
	if cfg.PriceMin > 0 {
		query += " AND price >= " + arg(cfg.PriceMin)
	}
	if cfg.PriceMax > 0 {
		query += " AND price <= " + arg(cfg.PriceMax)
	}
	if cfg.SitesMin > 0 {
		query += " AND num_sites >= " + arg(cfg.SitesMin)
	}
	if cfg.SitesMax > 0 {
		query += " AND num_sites <= " + arg(cfg.SitesMax)
	}
	if cfg.MinCapRate > 0 {
		query += " AND cap_rate >= " + arg(cfg.MinCapRate)
	}
	if cfg.MinOccupancy > 0 {
		query += " AND occupancy_rate >= " + arg(cfg.MinOccupancy)
	}
	if cfg.RevenueMin > 0 {
		query += " AND annual_revenue >= " + arg(cfg.RevenueMin)
	}
	if cfg.RevenueMax > 0 {
		query += " AND annual_revenue <= " + arg(cfg.RevenueMax)
	}
	if len(cfg.States) > 0 {
		query += " AND UPPER(state) = ANY(" + arg(pq.Array(upperAll(cfg.States))) + ")"
	}
	if len(cfg.PropertyTypes) > 0 {
		query += " AND LOWER(property_type) = ANY(" + arg(pq.Array(lowerAll(cfg.PropertyTypes))) + ")"
	}
	if len(cfg.Amenities) > 0 {
		query += " AND amenities && " + arg(pq.Array(lowerAll(cfg.Amenities)))
	}
	if cfg.ListedWithinDays > 0 {
		query += " AND created_at >= " + arg(now.AddDate(0, 0, -cfg.ListedWithinDays))
	}
	if cfg.FeaturedOnly {
		query += " AND featured = TRUE"
	}
	if cfg.WithImagesOnly {
		query += " AND EXISTS (SELECT 1 FROM listing_images i WHERE i.listing_id = listings.id)"
	}

	query += " ORDER BY " + sortColumn(cfg.SortBy) + sortDirection(cfg.SortDesc)
	if cfg.Limit > 0 {
		query += " LIMIT " + arg(cfg.Limit)
	}
	if cfg.Offset > 0 {
		query += " OFFSET " + arg(cfg.Offset)
	}
	return query, args
}

// ListApproved returns every publicly visible listing, newest first. It
// feeds the fallback snapshot.
func (r *ListingRepository) ListApproved(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.DB.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE status = 'approved' OR status = ''
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ListApproved: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) ListByBroker(ctx context.Context, brokerID string) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.DB.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE broker_id = $1
		ORDER BY created_at DESC
	`, brokerID)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ListByBroker: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) ListPending(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.DB.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ListPending: %w", err)
	}
	return listings, nil
}

// CountByStatus powers the admin dashboard stats.
func (r *ListingRepository) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := r.DB.QueryxContext(ctx, `
		SELECT status, COUNT(*) FROM listings GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.CountByStatus: %w", err)
	}
	defer rows.Close()

	counts := map[model.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("ListingRepository.CountByStatus: scan: %w", err)
		}
		counts[model.Status(status)] = n
	}
	return counts, rows.Err()
}

func noRowsToNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func sortColumn(key filter.SortKey) string {
	switch key {
	case filter.SortPrice:
		return "price"
	case filter.SortNumSites:
		return "num_sites"
	case filter.SortCapRate:
		return "cap_rate"
	default:
		return "created_at"
	}
}

func sortDirection(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

// escapeLike neutralizes the LIKE metacharacters so a search term is
// matched as a literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
