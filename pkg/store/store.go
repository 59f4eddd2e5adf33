// comply/pkg/store/store.go

package store

import (
	"context"

	"rgehrsitz/comply/pkg/report"
)

// Publisher notifies downstream integrations about completed evaluations.
// Flat JSON files remain the system of record for full reports; a publisher
// only carries summaries.
type Publisher interface {
	PublishReport(ctx context.Context, r *report.Report) error
	LatestScore(ctx context.Context, asset string) (float64, bool, error)
	Close() error
}

// NopPublisher is used when no transport is configured.
type NopPublisher struct{}

func (NopPublisher) PublishReport(context.Context, *report.Report) error { return nil }

func (NopPublisher) LatestScore(context.Context, string) (float64, bool, error) {
	return 0, false, nil
}

func (NopPublisher) Close() error { return nil }
