package service

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/filter"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/moderation"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/search"
)

// ListingStore is the relational persistence surface the service needs.
// *repository.ListingRepository implements it.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	UpdateStatus(ctx context.Context, id string, status model.Status, reason string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, cfg filter.Config, now time.Time) ([]model.Listing, error)
	ListApproved(ctx context.Context) ([]model.Listing, error)
	ListByBroker(ctx context.Context, brokerID string) ([]model.Listing, error)
	ListPending(ctx context.Context, limit, offset int) ([]model.Listing, error)
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
}

type ImageStore interface {
	Insert(ctx context.Context, img *model.Image) error
	GetByID(ctx context.Context, id string) (*model.Image, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Image, error)
	ListByListings(ctx context.Context, listingIDs []string) (map[string][]model.Image, error)
	SetPrimary(ctx context.Context, listingID, imageID string) error
	Delete(ctx context.Context, listingID, imageID string) error
}

type DocumentStore interface {
	Insert(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Document, error)
	Delete(ctx context.Context, listingID, docID string) error
}

// BlobStore holds the actual file bytes (GridFS in production).
type BlobStore interface {
	Upload(filename string, src io.Reader) (string, error)
	Download(fileID string) ([]byte, error)
	Delete(fileID string) error
}

// ListingService owns the listing lifecycle: creation, content edits,
// moderation, media, search. Authorization decisions take an explicit
// model.Actor; nothing here reads ambient auth state.
type ListingService struct {
	listings  ListingStore
	images    ImageStore
	documents DocumentStore
	blobs     BlobStore
	snapshot  *search.Snapshot
	composer  *search.Composer
	log       *logrus.Entry
}

func NewListingService(ls ListingStore, is ImageStore, ds DocumentStore, bs BlobStore, log *logrus.Entry) *ListingService {
	snapshot := search.NewSnapshot()
	return &ListingService{
		listings:  ls,
		images:    is,
		documents: ds,
		blobs:     bs,
		snapshot:  snapshot,
		composer:  search.NewComposer(ls, snapshot, log),
		log:       log,
	}
}

// Create stores a new listing owned by the acting broker. The status is
// forced to pending regardless of what the caller supplied.
func (s *ListingService) Create(ctx context.Context, actor model.Actor, draft *model.Listing) (*model.Listing, error) {
	if actor.ID == "" {
		return nil, apperr.ErrForbidden
	}
	normalize(draft)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	draft.ID = uuid.NewString()
	draft.BrokerID = actor.ID
	draft.Status = model.StatusPending
	draft.RejectionReason = ""
	draft.CreatedAt = now
	draft.UpdatedAt = now

	if err := s.listings.Create(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Update applies content-field edits from the owning broker or an admin.
// The status and rejection reason are never touched here: a broker editing
// an approved or rejected listing does not reset moderation.
func (s *ListingService) Update(ctx context.Context, actor model.Actor, id string, draft *model.Listing) (*model.Listing, error) {
	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(current) {
		return nil, apperr.ErrForbidden
	}

	normalize(draft)
	current.Title = draft.Title
	current.Description = draft.Description
	current.PropertyType = draft.PropertyType
	current.Amenities = draft.Amenities
	current.Address = draft.Address
	current.City = draft.City
	current.State = draft.State
	current.Latitude = draft.Latitude
	current.Longitude = draft.Longitude
	current.Price = draft.Price
	current.NumSites = draft.NumSites
	current.OccupancyRate = draft.OccupancyRate
	current.AnnualRevenue = draft.AnnualRevenue
	current.CapRate = draft.CapRate
	current.Featured = draft.Featured
	current.UpdatedAt = time.Now().UTC()

	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, current); err != nil {
		return nil, err
	}
	s.RefreshSnapshot(ctx)
	return current, nil
}

// Delete removes the listing, its image and document rows (cascaded by the
// database) and their stored blobs.
func (s *ListingService) Delete(ctx context.Context, actor model.Actor, id string) error {
	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanEdit(current) {
		return apperr.ErrForbidden
	}

	images, err := s.images.ListByListing(ctx, id)
	if err != nil {
		return err
	}
	docs, err := s.documents.ListByListing(ctx, id)
	if err != nil {
		return err
	}
	for _, img := range images {
		if err := s.blobs.Delete(img.FileID); err != nil {
			s.log.WithError(err).WithField("file_id", img.FileID).Warn("orphaned image blob")
		}
	}
	for _, doc := range docs {
		if err := s.blobs.Delete(doc.FileID); err != nil {
			s.log.WithError(err).WithField("file_id", doc.FileID).Warn("orphaned document blob")
		}
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.RefreshSnapshot(ctx)
	return nil
}

// Get returns one listing with its media attached. Listings that are not
// publicly visible are only shown to their owner or an admin; everyone else
// gets not-found rather than a hint that the listing exists.
func (s *ListingService) Get(ctx context.Context, actor model.Actor, id string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.Status.VisibleToPublic() && !actor.CanEdit(l) {
		return nil, apperr.ErrNotFound
	}
	if l.Images, err = s.images.ListByListing(ctx, id); err != nil {
		return nil, err
	}
	if l.Documents, err = s.documents.ListByListing(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

// Search serves the public browse query through the composer and decorates
// the results with their images. The result's source tag is logged by the
// handler; callers treat every source as success.
func (s *ListingService) Search(ctx context.Context, cfg filter.Config) search.Result {
	res := s.composer.Search(ctx, cfg, time.Now().UTC())
	if res.Source == search.SourceRemote {
		s.attachImages(ctx, res.Listings)
	}
	return res
}

// MyListings returns the broker's own listings in every status.
func (s *ListingService) MyListings(ctx context.Context, actor model.Actor) ([]model.Listing, error) {
	if actor.ID == "" {
		return nil, apperr.ErrForbidden
	}
	listings, err := s.listings.ListByBroker(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	s.attachImages(ctx, listings)
	return listings, nil
}

// Moderate runs the status state machine and persists a non-no-op change.
func (s *ListingService) Moderate(ctx context.Context, actor model.Actor, id string, target model.Status, reason string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := moderation.Transition(actor, l.Status, l.RejectionReason, target, reason)
	if err != nil {
		return nil, err
	}
	if change.NoOp {
		return l, nil
	}

	now := time.Now().UTC()
	if err := s.listings.UpdateStatus(ctx, id, change.Status, change.RejectionReason, now); err != nil {
		return nil, err
	}
	l.Status = change.Status
	l.RejectionReason = change.RejectionReason
	l.UpdatedAt = now

	s.log.WithFields(logrus.Fields{
		"listing_id": id,
		"status":     string(change.Status),
		"admin_id":   actor.ID,
	}).Info("listing moderated")

	s.RefreshSnapshot(ctx)
	return l, nil
}

// Pending lists listings awaiting review, for admins.
func (s *ListingService) Pending(ctx context.Context, actor model.Actor, limit, offset int) ([]model.Listing, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	return s.listings.ListPending(ctx, limit, offset)
}

// Stats returns listing counts per status, for the admin dashboard.
func (s *ListingService) Stats(ctx context.Context, actor model.Actor) (map[model.Status]int, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	return s.listings.CountByStatus(ctx)
}

// RefreshSnapshot reloads the fallback dataset from the database. Failures
// are logged and otherwise ignored: a stale snapshot beats no snapshot.
func (s *ListingService) RefreshSnapshot(ctx context.Context) {
	listings, err := s.listings.ListApproved(ctx)
	if err != nil {
		s.log.WithError(err).Warn("fallback snapshot refresh failed")
		return
	}
	s.attachImages(ctx, listings)
	s.snapshot.Set(listings)
}

func (s *ListingService) attachImages(ctx context.Context, listings []model.Listing) {
	ids := make([]string, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	grouped, err := s.images.ListByListings(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("could not attach listing images")
		return
	}
	for i := range listings {
		listings[i].Images = grouped[listings[i].ID]
	}
}

// normalize canonicalizes free-form fields so the SQL and in-memory filter
// paths agree: state codes uppercase, property type and amenities lowercase.
func normalize(l *model.Listing) {
	l.Title = strings.TrimSpace(l.Title)
	l.Description = strings.TrimSpace(l.Description)
	l.State = strings.ToUpper(strings.TrimSpace(l.State))
	l.PropertyType = strings.ToLower(strings.TrimSpace(l.PropertyType))
	for i, a := range l.Amenities {
		l.Amenities[i] = strings.ToLower(strings.TrimSpace(a))
	}
}

// classifyDocument infers a document category from its file name.
func classifyDocument(filename string) string {
	name := strings.ToLower(filename)
	ext := path.Ext(name)
	switch {
	case strings.Contains(name, "memorandum"), strings.Contains(name, "om_"), strings.HasPrefix(name, "om"):
		return model.CategoryOfferingMemorandum
	case strings.Contains(name, "financ"), ext == ".xls", ext == ".xlsx", ext == ".csv":
		return model.CategoryFinancials
	default:
		return model.CategoryOther
	}
}
