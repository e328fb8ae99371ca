package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/filter"
	applog "github.com/William19D/rv-parks-for-sale-sub001/internal/log"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/moderation"
)

var (
	admin  = model.Actor{ID: "admin-1", Roles: []string{model.RoleAdmin}}
	broker = model.Actor{ID: "broker-1", Roles: []string{model.RoleBroker}}
	rival  = model.Actor{ID: "broker-2", Roles: []string{model.RoleBroker}}
)

// memStore is an in-memory ListingStore/ImageStore/DocumentStore/BlobStore.
type memStore struct {
	listings  map[string]model.Listing
	images    map[string]model.Image
	documents map[string]model.Document
	blobs     map[string][]byte
	nextBlob  int
	remoteErr error
}

func newMemStore() *memStore {
	return &memStore{
		listings:  map[string]model.Listing{},
		images:    map[string]model.Image{},
		documents: map[string]model.Document{},
		blobs:     map[string][]byte{},
	}
}

func (m *memStore) Create(_ context.Context, l *model.Listing) error {
	m.listings[l.ID] = *l
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*model.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := l
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, l *model.Listing) error {
	if _, ok := m.listings[l.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.listings[l.ID] = *l
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status model.Status, reason string, updatedAt time.Time) error {
	l, ok := m.listings[id]
	if !ok {
		return apperr.ErrNotFound
	}
	l.Status = status
	l.RejectionReason = reason
	l.UpdatedAt = updatedAt
	m.listings[id] = l
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.listings[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.listings, id)
	for iid, img := range m.images {
		if img.ListingID == id {
			delete(m.images, iid)
		}
	}
	for did, doc := range m.documents {
		if doc.ListingID == id {
			delete(m.documents, did)
		}
	}
	return nil
}

func (m *memStore) Search(_ context.Context, cfg filter.Config, now time.Time) ([]model.Listing, error) {
	if m.remoteErr != nil {
		return nil, m.remoteErr
	}
	all := make([]model.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		all = append(all, l)
	}
	return filter.Apply(all, cfg, now), nil
}

func (m *memStore) ListApproved(_ context.Context) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.Status.VisibleToPublic() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) ListByBroker(_ context.Context, brokerID string) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.BrokerID == brokerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) ListPending(_ context.Context, limit, offset int) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.Status == model.StatusPending {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) CountByStatus(_ context.Context) (map[model.Status]int, error) {
	counts := map[model.Status]int{}
	for _, l := range m.listings {
		counts[l.Status]++
	}
	return counts, nil
}

func (m *memStore) Insert(_ context.Context, img *model.Image) error {
	// mirror the repository: next position is max+1, first image is primary
	next := 0
	for _, existing := range m.images {
		if existing.ListingID == img.ListingID && existing.Position >= next {
			next = existing.Position + 1
		}
	}
	img.Position = next
	img.Primary = next == 0
	m.images[img.ID] = *img
	return nil
}

func (m *memStore) ListByListing(_ context.Context, listingID string) ([]model.Image, error) {
	var out []model.Image
	for _, img := range m.images {
		if img.ListingID == listingID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memStore) ListByListings(_ context.Context, ids []string) (map[string][]model.Image, error) {
	out := map[string][]model.Image{}
	for _, img := range m.images {
		out[img.ListingID] = append(out[img.ListingID], img)
	}
	return out, nil
}

func (m *memStore) SetPrimary(_ context.Context, listingID, imageID string) error {
	for id, img := range m.images {
		if img.ListingID == listingID {
			img.Primary = id == imageID
			m.images[id] = img
		}
	}
	return nil
}

type imageStore struct{ *memStore }

func (s imageStore) GetByID(_ context.Context, id string) (*model.Image, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := img
	return &cp, nil
}

func (s imageStore) Delete(_ context.Context, listingID, imageID string) error {
	img, ok := s.images[imageID]
	if !ok || img.ListingID != listingID {
		return apperr.ErrNotFound
	}
	delete(s.images, imageID)
	return nil
}

type documentStore struct{ *memStore }

func (s documentStore) Insert(_ context.Context, doc *model.Document) error {
	s.documents[doc.ID] = *doc
	return nil
}

func (s documentStore) GetByID(_ context.Context, id string) (*model.Document, error) {
	doc, ok := s.documents[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := doc
	return &cp, nil
}

func (s documentStore) ListByListing(_ context.Context, listingID string) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range s.documents {
		if doc.ListingID == listingID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s documentStore) Delete(_ context.Context, listingID, docID string) error {
	doc, ok := s.documents[docID]
	if !ok || doc.ListingID != listingID {
		return apperr.ErrNotFound
	}
	delete(s.documents, docID)
	return nil
}

func (m *memStore) Upload(filename string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	m.nextBlob++
	id := fmt.Sprintf("blob-%d", m.nextBlob)
	m.blobs[id] = data
	return id, nil
}

func (m *memStore) Download(fileID string) ([]byte, error) {
	data, ok := m.blobs[fileID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return data, nil
}

func (m *memStore) DeleteBlob(fileID string) error {
	if _, ok := m.blobs[fileID]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.blobs, fileID)
	return nil
}

type blobStore struct{ *memStore }

func (s blobStore) Delete(fileID string) error { return s.DeleteBlob(fileID) }

func newService(store *memStore) *ListingService {
	return NewListingService(store, imageStore{store}, documentStore{store}, blobStore{store}, applog.L())
}

func validDraft() *model.Listing {
	return &model.Listing{
		Title:         "Lakefront RV Resort",
		Description:   "A well-run lakefront RV resort with strong seasonal demand.",
		PropertyType:  "RV_Park",
		State:         "tx",
		City:          "Austin",
		Amenities:     []string{"Pool", "WiFi"},
		Price:         4_500_000,
		NumSites:      150,
		OccupancyRate: 78,
		AnnualRevenue: 1_200_000,
		CapRate:       9.5,
	}
}

func TestCreateForcesPending(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	draft := validDraft()
	draft.Status = model.StatusApproved // callers cannot self-approve
	draft.RejectionReason = "junk"

	created, err := svc.Create(context.Background(), broker, draft)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != model.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.RejectionReason != "" {
		t.Fatalf("new listing must have no rejection reason")
	}
	if created.BrokerID != broker.ID {
		t.Fatalf("owner must be the acting broker")
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("id and timestamps must be assigned")
	}
	if created.State != "TX" || created.PropertyType != "rv_park" {
		t.Fatalf("state and property type must be canonicalized: %q %q", created.State, created.PropertyType)
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.Create(context.Background(), model.Actor{}, validDraft())
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	svc := newService(newMemStore())
	draft := validDraft()
	draft.Title = "RV"
	_, err := svc.Create(context.Background(), broker, draft)
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateDoesNotTouchStatus(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	created, err := svc.Create(context.Background(), broker, validDraft())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Moderate(context.Background(), admin, created.ID, model.StatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	edit := validDraft()
	edit.Title = "Renamed Lakefront Resort"
	updated, err := svc.Update(context.Background(), broker, created.ID, edit)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Fatalf("broker edit must not change status, got %s", updated.Status)
	}
	if updated.Title != "Renamed Lakefront Resort" {
		t.Fatalf("content edit not applied")
	}
}

func TestUpdateAuthorization(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	created, _ := svc.Create(context.Background(), broker, validDraft())

	if _, err := svc.Update(context.Background(), rival, created.ID, validDraft()); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("rival broker edit: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(context.Background(), admin, created.ID, validDraft()); err != nil {
		t.Fatalf("admin edit should succeed: %v", err)
	}
}

func TestModerationPersistsAndClears(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())

	l, err := svc.Moderate(ctx, admin, created.ID, model.StatusApproved, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if l.Status != model.StatusApproved || l.RejectionReason != "" {
		t.Fatalf("approve outcome wrong: %s %q", l.Status, l.RejectionReason)
	}

	l, err = svc.Moderate(ctx, admin, created.ID, model.StatusRejected, "Incomplete financials")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if l.Status != model.StatusRejected || l.RejectionReason != "Incomplete financials" {
		t.Fatalf("reject outcome wrong: %s %q", l.Status, l.RejectionReason)
	}
	stored := store.listings[created.ID]
	if stored.Status != model.StatusRejected || stored.RejectionReason != "Incomplete financials" {
		t.Fatalf("rejection not persisted: %s %q", stored.Status, stored.RejectionReason)
	}

	l, err = svc.Moderate(ctx, admin, created.ID, model.StatusPending, "")
	if err != nil {
		t.Fatalf("mark pending failed: %v", err)
	}
	if l.RejectionReason != "" {
		t.Fatalf("pending must clear the rejection reason, got %q", l.RejectionReason)
	}
	if store.listings[created.ID].RejectionReason != "" {
		t.Fatalf("cleared reason not persisted")
	}
}

func TestModerationBlankReasonDefault(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())
	l, err := svc.Moderate(ctx, admin, created.ID, model.StatusRejected, "   ")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if l.RejectionReason != moderation.DefaultRejectionReason {
		t.Fatalf("expected default reason, got %q", l.RejectionReason)
	}
}

func TestModerationAuthorizationLeavesStatusUnchanged(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())

	for _, actor := range []model.Actor{broker, rival, {}} {
		_, err := svc.Moderate(ctx, actor, created.ID, model.StatusApproved, "")
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("actor %q: expected ErrForbidden, got %v", actor.ID, err)
		}
	}
	if store.listings[created.ID].Status != model.StatusPending {
		t.Fatalf("failed transitions must not change status")
	}
}

func TestModerateMissingListing(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.Moderate(context.Background(), admin, "nope", model.StatusApproved, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesMedia(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())
	if _, err := svc.AddImage(ctx, broker, created.ID, "front.jpg", "image/jpeg", bytes.NewReader([]byte("jpeg"))); err != nil {
		t.Fatalf("add image failed: %v", err)
	}
	if _, err := svc.AttachDocument(ctx, broker, created.ID, "offering_memorandum.pdf", "application/pdf", bytes.NewReader([]byte("pdf"))); err != nil {
		t.Fatalf("attach document failed: %v", err)
	}
	if len(store.blobs) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(store.blobs))
	}

	if err := svc.Delete(ctx, broker, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(store.listings) != 0 || len(store.images) != 0 || len(store.documents) != 0 {
		t.Fatalf("rows not cascaded")
	}
	if len(store.blobs) != 0 {
		t.Fatalf("blobs not cleaned up, %d left", len(store.blobs))
	}
}

func TestImagePositionsStayUniqueAfterDelete(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())
	var ids []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		img, err := svc.AddImage(ctx, broker, created.ID, name, "image/jpeg", bytes.NewReader([]byte(name)))
		if err != nil {
			t.Fatalf("add %s failed: %v", name, err)
		}
		ids = append(ids, img.ID)
	}

	// deleting a middle image leaves a gap; the next upload must not
	// reuse an occupied position
	if err := svc.RemoveImage(ctx, broker, created.ID, ids[1]); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	img, err := svc.AddImage(ctx, broker, created.ID, "d.jpg", "image/jpeg", bytes.NewReader([]byte("d")))
	if err != nil {
		t.Fatalf("add after delete failed: %v", err)
	}
	if img.Position != 3 {
		t.Fatalf("expected position 3, got %d", img.Position)
	}
	seen := map[int]bool{}
	for _, stored := range store.images {
		if seen[stored.Position] {
			t.Fatalf("duplicate position %d", stored.Position)
		}
		seen[stored.Position] = true
	}
}

func TestGetHidesUnmoderatedFromPublic(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())

	if _, err := svc.Get(ctx, model.Actor{}, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("anonymous view of pending listing: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, broker, created.ID); err != nil {
		t.Fatalf("owner must see own pending listing: %v", err)
	}
	if _, err := svc.Get(ctx, admin, created.ID); err != nil {
		t.Fatalf("admin must see pending listing: %v", err)
	}
}

func TestSearchFallsBackWhenStoreDown(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())
	if _, err := svc.Moderate(ctx, admin, created.ID, model.StatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	store.remoteErr = errors.New("database down")
	res := svc.Search(ctx, filter.Config{})
	if len(res.Listings) != 1 {
		t.Fatalf("fallback should still serve the approved listing, got %d", len(res.Listings))
	}
}

func TestDocumentClassification(t *testing.T) {
	cases := map[string]string{
		"offering_memorandum.pdf": model.CategoryOfferingMemorandum,
		"2025_financials.xlsx":    model.CategoryFinancials,
		"revenue.csv":             model.CategoryFinancials,
		"survey_map.pdf":          model.CategoryOther,
	}
	for filename, want := range cases {
		if got := classifyDocument(filename); got != want {
			t.Fatalf("classifyDocument(%q) = %q, want %q", filename, got, want)
		}
	}
}

func TestDocumentDownloadIsOwnerOnly(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	ctx := context.Background()

	created, _ := svc.Create(ctx, broker, validDraft())
	doc, err := svc.AttachDocument(ctx, broker, created.ID, "om.pdf", "application/pdf", bytes.NewReader([]byte("pdf")))
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if _, _, err := svc.DocumentBlob(ctx, rival, created.ID, doc.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("rival document download: expected ErrForbidden, got %v", err)
	}
	data, _, err := svc.DocumentBlob(ctx, broker, created.ID, doc.ID)
	if err != nil {
		t.Fatalf("owner download failed: %v", err)
	}
	if string(data) != "pdf" {
		t.Fatalf("wrong blob contents")
	}
}
