package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

type DocumentRepository struct {
	DB *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) Insert(ctx context.Context, doc *model.Document) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO listing_documents
			(id, listing_id, file_id, file_name, content_type, category, created_at)
		VALUES
			(:id, :listing_id, :file_id, :file_name, :content_type, :category, :created_at)
	`, doc)
	if err != nil {
		return fmt.Errorf("DocumentRepository.Insert: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.DB.GetContext(ctx, &doc, `SELECT * FROM listing_documents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("DocumentRepository.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByListing(ctx context.Context, listingID string) ([]model.Document, error) {
	var docs []model.Document
	err := r.DB.SelectContext(ctx, &docs, `
		SELECT * FROM listing_documents
		WHERE listing_id = $1
		ORDER BY created_at ASC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("DocumentRepository.ListByListing: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, listingID, docID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM listing_documents WHERE id = $1 AND listing_id = $2`, docID, listingID)
	if err != nil {
		return fmt.Errorf("DocumentRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
