// Package search composes listing queries over two execution paths: a
// remote query against the database and a local re-evaluation of the same
// predicate over an in-memory snapshot. The remote path is preferred; the
// local path keeps browsing alive while the database is unreachable.
package search

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/filter"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

// Source identifies which path produced a result set.
type Source int

const (
	SourceRemote Source = iota
	SourceFallback
	SourceUnavailable
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceFallback:
		return "fallback"
	default:
		return "unavailable"
	}
}

// Result is a served result set tagged with its source. Callers treat all
// three sources as success; the tag exists for logging and tracing only.
type Result struct {
	Listings []model.Listing
	Source   Source
}

// Querier is the remote path: a data source that evaluates a filter config
// server-side. Implemented by repository.ListingRepository.
type Querier interface {
	Search(ctx context.Context, cfg filter.Config, now time.Time) ([]model.Listing, error)
}

// Composer runs a search against the remote querier and falls back to the
// local snapshot when the remote path fails.
type Composer struct {
	remote Querier
	local  *Snapshot
	log    *logrus.Entry
}

func NewComposer(remote Querier, local *Snapshot, log *logrus.Entry) *Composer {
	return &Composer{remote: remote, local: local, log: log}
}

// Search never returns an error: a failed remote query degrades to the
// snapshot, and if the snapshot is empty too the result is an empty set
// tagged SourceUnavailable. An empty remote result for a config with no
// active criteria is treated as implausible (the marketplace is not empty)
// and also degrades, which covers a reachable but unpopulated or
// misconfigured data source.
func (c *Composer) Search(ctx context.Context, cfg filter.Config, now time.Time) Result {
	listings, err := c.remote.Search(ctx, cfg, now)
	if err == nil && !(len(listings) == 0 && cfg.IsZero() && c.local.Len() > 0) {
		if listings == nil {
			listings = []model.Listing{}
		}
		return Result{Listings: listings, Source: SourceRemote}
	}
	if err != nil {
		c.log.WithError(err).Warn("remote listing query failed, serving local snapshot")
	} else {
		c.log.Warn("remote listing query returned nothing for an open search, serving local snapshot")
	}

	snapshot := c.local.Listings()
	if len(snapshot) == 0 {
		return Result{Listings: []model.Listing{}, Source: SourceUnavailable}
	}
	return Result{Listings: filter.Apply(snapshot, cfg, now), Source: SourceFallback}
}
