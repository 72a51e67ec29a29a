// Package health wraps the device health-data source. Providers return a
// best-effort bundle of metrics for a calendar day; absence of data is
// reported as a nil snapshot, never as an error.
package health

import (
	"context"
	"time"

	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

// SnapshotProvider is the contract the sync orchestrator consumes.
type SnapshotProvider interface {
	// RequestAuthorization asks the underlying source for read access.
	// false means denied; the sync run then degrades to fetch-only.
	RequestAuthorization(ctx context.Context) (bool, error)

	// TodaySnapshot captures the current day, including demographics when
	// available. manualHeartRate, when non-nil, is carried as an override
	// for sources that cannot measure heart rate.
	TodaySnapshot(ctx context.Context, manualHeartRate *int) (*models.HealthSnapshot, error)

	// SnapshotFor captures a past day. History snapshots carry activity
	// metrics only, no demographics. A nil snapshot means no data.
	SnapshotFor(ctx context.Context, day time.Time) (*models.HealthSnapshot, error)
}
