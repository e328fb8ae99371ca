package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

// AddImage uploads image bytes to the blob store and records the gallery
// entry. Only the owning broker or an admin may attach media.
func (s *ListingService) AddImage(ctx context.Context, actor model.Actor, listingID, filename, contentType string, src io.Reader) (*model.Image, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(listing) {
		return nil, apperr.ErrForbidden
	}

	fileID, err := s.blobs.Upload(fmt.Sprintf("listing_%s_%s", listingID, filename), src)
	if err != nil {
		return nil, err
	}

	img := &model.Image{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		FileID:      fileID,
		FileName:    filename,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.images.Insert(ctx, img); err != nil {
		// keep the blob store consistent with the row store
		if derr := s.blobs.Delete(fileID); derr != nil {
			s.log.WithError(derr).WithField("file_id", fileID).Warn("orphaned image blob")
		}
		return nil, err
	}
	s.RefreshSnapshot(ctx)
	return img, nil
}

// RemoveImage deletes the gallery entry and its blob.
func (s *ListingService) RemoveImage(ctx context.Context, actor model.Actor, listingID, imageID string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !actor.CanEdit(listing) {
		return apperr.ErrForbidden
	}

	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.ListingID != listingID {
		return apperr.ErrNotFound
	}
	if err := s.images.Delete(ctx, listingID, imageID); err != nil {
		return err
	}
	if err := s.blobs.Delete(img.FileID); err != nil {
		s.log.WithError(err).WithField("file_id", img.FileID).Warn("orphaned image blob")
	}
	s.RefreshSnapshot(ctx)
	return nil
}

// SetPrimaryImage marks one image as the listing's primary photo.
func (s *ListingService) SetPrimaryImage(ctx context.Context, actor model.Actor, listingID, imageID string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !actor.CanEdit(listing) {
		return apperr.ErrForbidden
	}
	return s.images.SetPrimary(ctx, listingID, imageID)
}

// ImageBlob returns the stored bytes for a listing image. Image downloads
// are public for publicly visible listings.
func (s *ListingService) ImageBlob(ctx context.Context, actor model.Actor, listingID, imageID string) ([]byte, *model.Image, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}
	if !listing.Status.VisibleToPublic() && !actor.CanEdit(listing) {
		return nil, nil, apperr.ErrNotFound
	}
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if img.ListingID != listingID {
		return nil, nil, apperr.ErrNotFound
	}
	data, err := s.blobs.Download(img.FileID)
	if err != nil {
		return nil, nil, err
	}
	return data, img, nil
}

// AttachDocument stores a document (offering memorandum, financials, ...)
// and classifies it by file name.
func (s *ListingService) AttachDocument(ctx context.Context, actor model.Actor, listingID, filename, contentType string, src io.Reader) (*model.Document, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(listing) {
		return nil, apperr.ErrForbidden
	}

	fileID, err := s.blobs.Upload(fmt.Sprintf("listing_%s_%s", listingID, filename), src)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		FileID:      fileID,
		FileName:    filename,
		ContentType: contentType,
		Category:    classifyDocument(filename),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		if derr := s.blobs.Delete(fileID); derr != nil {
			s.log.WithError(derr).WithField("file_id", fileID).Warn("orphaned document blob")
		}
		return nil, err
	}
	return doc, nil
}

// RemoveDocument deletes a document row and its blob.
func (s *ListingService) RemoveDocument(ctx context.Context, actor model.Actor, listingID, docID string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !actor.CanEdit(listing) {
		return apperr.ErrForbidden
	}

	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.ListingID != listingID {
		return apperr.ErrNotFound
	}
	if err := s.documents.Delete(ctx, listingID, docID); err != nil {
		return err
	}
	if err := s.blobs.Delete(doc.FileID); err != nil {
		s.log.WithError(err).WithField("file_id", doc.FileID).Warn("orphaned document blob")
	}
	return nil
}

// DocumentBlob returns a document's bytes. Documents are not public: only
// the owning broker or an admin may download them.
func (s *ListingService) DocumentBlob(ctx context.Context, actor model.Actor, listingID, docID string) ([]byte, *model.Document, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanEdit(listing) {
		return nil, nil, apperr.ErrForbidden
	}
	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	if doc.ListingID != listingID {
		return nil, nil, apperr.ErrNotFound
	}
	data, err := s.blobs.Download(doc.FileID)
	if err != nil {
		return nil, nil, err
	}
	return data, doc, nil
}
