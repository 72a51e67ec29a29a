// Package sync drives the reconciliation of locally captured health samples
// with the remote backend: authorize, capture today, upload, sync profile,
// backfill history, trigger aggregation, and publish the merged display
// state. Every network step degrades to "skip and keep going" so the user
// always eventually sees something; the single fatal condition is an
// invalid session credential.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/devgirls-app/health-monitoring-app/internal/api"
	"github.com/devgirls-app/health-monitoring-app/internal/health"
	"github.com/devgirls-app/health-monitoring-app/internal/models"
	"github.com/devgirls-app/health-monitoring-app/internal/recs"
)

// State names the orchestrator's position in the sync sequence. Each state
// strictly completes before the next begins; there is no overlap.
type State int

const (
	StateIdle State = iota
	StateAuthorizing
	StateCapturing
	StateUploading
	StateSyncingProfile
	StateBackfilling
	StateAggregating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthorizing:
		return "authorizing"
	case StateCapturing:
		return "capturing"
	case StateUploading:
		return "uploading"
	case StateSyncingProfile:
		return "syncing-profile"
	case StateBackfilling:
		return "backfilling"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Backend is the subset of the transport client the orchestrator drives.
type Backend interface {
	SyncUserProfile(ctx context.Context, userID int, upd models.ProfileUpdate) error
	PostHealthData(ctx context.Context, dto models.HealthDataDTO) error
	RunAggregate(ctx context.Context, userID int, day string) (*models.DailySummary, error)
	FetchUserProfile(ctx context.Context, userID int) (*models.UserProfile, error)
	FetchRecommendations(ctx context.Context) ([]models.HealthRecommendation, error)
	TriggerWeeklySummary(ctx context.Context, userID int, weekEnd string) error
}

var _ Backend = (*api.Client)(nil)

// Session exposes the read-only view of the session store the orchestrator
// consumes. The orchestrator never writes session state; teardown belongs
// to the transport client.
type Session interface {
	UserID() (int, bool)
	IsAuthenticated() bool
}

// Config tunes one sync run. Zero values take the defaults below.
type Config struct {
	// BackfillDays is the trailing window of history days to reconcile,
	// yesterday back to today-BackfillDays, uploaded oldest-first. The
	// window is recomputed from scratch every run; no cursor survives a
	// restart.
	BackfillDays int

	// Pacing is the fixed delay between backfill days, respecting backend
	// rate limits.
	Pacing time.Duration

	// GracePeriod is how long to wait after backfill before triggering
	// aggregation, so the backend's asynchronous ingestion pipeline can
	// persist the uploads first.
	GracePeriod time.Duration

	// Activity thresholds: a history day is uploaded only when it shows
	// more than MinSteps steps or more than MinSleepHours hours of sleep,
	// to avoid flooding the backend with all-zero days.
	MinSteps      int
	MinSleepHours float64

	// DryRun captures and converts but never touches the network.
	DryRun bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

const (
	defaultBackfillDays  = 14
	defaultPacing        = 500 * time.Millisecond
	defaultGracePeriod   = 30 * time.Second
	defaultMinSteps      = 10
	defaultMinSleepHours = 0.5
)

func (c Config) withDefaults() Config {
	if c.BackfillDays == 0 {
		c.BackfillDays = defaultBackfillDays
	}
	if c.Pacing == 0 {
		c.Pacing = defaultPacing
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = defaultGracePeriod
	}
	if c.MinSteps == 0 {
		c.MinSteps = defaultMinSteps
	}
	if c.MinSleepHours == 0 {
		c.MinSleepHours = defaultMinSleepHours
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Events are the orchestrator's outputs to presentation surfaces. Nil
// callbacks are skipped.
type Events struct {
	// LocalMetrics fires with today's snapshot as soon as it is captured,
	// before the upload result is known, so the display reflects on-device
	// truth without waiting on the network.
	LocalMetrics func(models.HealthSnapshot)

	// DisplayState fires at the end of a run with the merged server view.
	DisplayState func(DisplayState)
}

// DisplayState is the merged profile-plus-recommendations view published to
// presentation surfaces.
type DisplayState struct {
	Profile         *models.UserProfile
	Recommendations recs.Reconciled
}

// Stats accumulates what one run did.
type Stats struct {
	TodayUploaded bool
	ProfileSynced bool

	DaysScanned  int
	DaysUploaded int
	DaysSkipped  int
	UploadErrors int

	AggregatesTriggered    int
	WeeklySummaryTriggered bool
	RecommendationsLoaded  int
}

// Orchestrator executes the sync sequence for one app-foreground session.
// It is not safe for concurrent Run calls.
type Orchestrator struct {
	backend  Backend
	provider health.SnapshotProvider
	session  Session
	cfg      Config
	events   Events
	log      *slog.Logger

	state State
	stats Stats
}

// New creates an Orchestrator with explicitly injected collaborators.
func New(backend Backend, provider health.SnapshotProvider, session Session, cfg Config, events Events, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		provider: provider,
		session:  session,
		cfg:      cfg.withDefaults(),
		events:   events,
		log:      log,
	}
}

// State returns the current position in the sequence.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	o.log.Debug("sync state", "state", s.String())
}

func (o *Orchestrator) now() time.Time {
	return o.cfg.Now()
}

// Run executes one full sync session: request authorization, capture and
// upload today, sync the profile, backfill history, trigger aggregation and
// the weekly summary when due, then fetch and publish the display state.
//
// Partial failures are logged and skipped. Run returns an error only for
// the fatal cases: an invalidated credential (api.ErrUnauthorized in the
// chain) or context cancellation.
func (o *Orchestrator) Run(ctx context.Context, manualHeartRate *int) (*Stats, error) {
	o.stats = Stats{}

	o.setState(StateAuthorizing)
	granted, err := o.provider.RequestAuthorization(ctx)
	if err != nil {
		o.log.Warn("authorization request failed", "error", err)
	}
	if err != nil || !granted {
		o.log.Info("health data access not granted, fetch-only mode")
		return o.finish(ctx)
	}

	snapshot, err := o.captureAndUploadToday(ctx, manualHeartRate)
	if err != nil {
		return &o.stats, fmt.Errorf("sync halted: %w", err)
	}

	profileOK, err := o.syncProfile(ctx, snapshot)
	if err != nil {
		return &o.stats, fmt.Errorf("sync halted: %w", err)
	}

	if profileOK {
		if err := o.backfillHistory(ctx); err != nil {
			return &o.stats, fmt.Errorf("sync halted: %w", err)
		}
		if err := o.aggregate(ctx); err != nil {
			return &o.stats, fmt.Errorf("sync halted: %w", err)
		}
	} else {
		// The profile must be current before historical aggregation is
		// meaningful.
		o.log.Warn("profile not synced, skipping history backfill")
	}

	return o.finish(ctx)
}

// captureAndUploadToday captures the current day, publishes it locally, and
// uploads it. A failed capture or upload is not fatal; only an invalidated
// credential is returned as an error.
func (o *Orchestrator) captureAndUploadToday(ctx context.Context, manualHeartRate *int) (*models.HealthSnapshot, error) {
	o.setState(StateCapturing)
	snap, err := o.provider.TodaySnapshot(ctx, manualHeartRate)
	if err != nil {
		o.log.Warn("today capture failed", "error", err)
		return nil, nil
	}
	if snap == nil {
		o.log.Info("no device data for today")
		return nil, nil
	}

	// Local display first; the upload result never gates it.
	if o.events.LocalMetrics != nil {
		o.events.LocalMetrics(*snap)
	}

	userID, ok := o.session.UserID()
	if !ok {
		o.log.Info("no cached user id, skipping upload")
		return snap, nil
	}

	o.setState(StateUploading)
	dto := snap.ToDTO(userID, models.SourceDeviceLive)
	if o.cfg.DryRun {
		o.log.Info("dry-run: would upload today's snapshot",
			"steps", snap.StepsOrZero(), "sleep_hours", snap.SleepHoursOrZero())
		return snap, nil
	}
	if err := o.backend.PostHealthData(ctx, dto); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, err
		}
		o.log.Warn("today upload failed", "error", err)
		o.stats.UploadErrors++
		return snap, nil
	}
	o.stats.TodayUploaded = true
	o.log.Info("today's snapshot uploaded")
	return snap, nil
}

// syncProfile pushes demographics from the snapshot so server-side models
// work with current age/weight/height/gender. Its success gates backfill.
func (o *Orchestrator) syncProfile(ctx context.Context, snapshot *models.HealthSnapshot) (bool, error) {
	o.setState(StateSyncingProfile)

	userID, ok := o.session.UserID()
	if !ok || (!o.cfg.DryRun && !o.session.IsAuthenticated()) {
		o.log.Info("no valid session, fetch-only mode")
		return false, nil
	}

	if o.cfg.DryRun {
		o.log.Info("dry-run: would sync profile", "user_id", userID)
		return true, nil
	}

	if err := o.backend.SyncUserProfile(ctx, userID, snapshot.ProfileUpdate()); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return false, err
		}
		o.log.Warn("profile sync failed", "error", err)
		return false, nil
	}
	o.stats.ProfileSynced = true
	return true, nil
}

// aggregate waits out the ingestion grace period, triggers today's
// aggregate, and requests the weekly summary when today starts an ISO week.
func (o *Orchestrator) aggregate(ctx context.Context) error {
	userID, ok := o.session.UserID()
	if !ok {
		return nil
	}
	o.setState(StateAggregating)

	// The backend ingests uploads asynchronously; give its pipeline time
	// to persist before asking it to aggregate what was just sent.
	if err := o.wait(ctx, o.cfg.GracePeriod); err != nil {
		return err
	}

	today := o.now()
	if o.cfg.DryRun {
		o.log.Info("dry-run: would trigger today's aggregation", "date", models.DayKey(today))
	} else if _, err := o.backend.RunAggregate(ctx, userID, models.DayKey(today)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		o.log.Warn("today aggregation failed", "error", err)
	} else {
		o.stats.AggregatesTriggered++
	}

	weekEnd, due := weeklySummaryDue(today)
	if !due {
		return nil
	}
	if o.cfg.DryRun {
		o.log.Info("dry-run: would trigger weekly summary", "week_end", models.DayKey(weekEnd))
		return nil
	}
	if err := o.backend.TriggerWeeklySummary(ctx, userID, models.DayKey(weekEnd)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		o.log.Warn("weekly summary trigger failed", "error", err)
		return nil
	}
	o.stats.WeeklySummaryTriggered = true
	o.log.Info("weekly summary triggered", "week_end", models.DayKey(weekEnd))
	return nil
}

// weeklySummaryDue reports whether now starts an ISO week (Monday) and, if
// so, returns the prior week's end date (the Sunday just passed).
func weeklySummaryDue(now time.Time) (time.Time, bool) {
	if now.Weekday() != time.Monday {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -1), true
}

// finish fetches and publishes the display state and completes the run.
// Total failure of the display fetch leaves the app usable; only an
// invalidated credential is an error.
func (o *Orchestrator) finish(ctx context.Context) (*Stats, error) {
	err := o.fetchDisplayState(ctx)
	o.setState(StateDone)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return &o.stats, fmt.Errorf("display fetch: %w", err)
		}
		o.log.Warn("display state unavailable", "error", err)
	}
	return &o.stats, nil
}

// fetchDisplayState fetches the profile and the recommendation list in
// parallel, joins both regardless of individual failure, reconciles, and
// publishes whatever succeeded.
func (o *Orchestrator) fetchDisplayState(ctx context.Context) error {
	userID, ok := o.session.UserID()
	if !ok {
		o.log.Info("no cached user id, nothing to display")
		return nil
	}
	if o.cfg.DryRun {
		o.log.Info("dry-run: skipping display fetch")
		return nil
	}

	var (
		wg         stdsync.WaitGroup
		profile    *models.UserProfile
		profileErr error
		list       []models.HealthRecommendation
		listErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = o.backend.FetchUserProfile(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		list, listErr = o.backend.FetchRecommendations(ctx)
	}()
	wg.Wait()

	if profileErr != nil {
		o.log.Warn("profile fetch failed", "error", profileErr)
	}
	if listErr != nil {
		o.log.Warn("recommendations fetch failed", "error", listErr)
	}
	if errors.Is(profileErr, api.ErrUnauthorized) || errors.Is(listErr, api.ErrUnauthorized) {
		return api.ErrUnauthorized
	}
	if profileErr != nil && listErr != nil {
		return errors.Join(profileErr, listErr)
	}

	merged := recs.Reconcile(list, userID)
	o.stats.RecommendationsLoaded = len(merged.Weekly) + len(merged.Daily)
	if profile != nil {
		// Re-inject the filtered, deduplicated list so downstream consumers
		// only ever see this user's recommendations.
		profile.Recommendations = merged.All()
	}

	if o.events.DisplayState != nil {
		o.events.DisplayState(DisplayState{Profile: profile, Recommendations: merged})
	}
	return nil
}

// wait sleeps for d unless the context is cancelled first.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
