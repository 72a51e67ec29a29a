package sync

import (
	"context"
	"errors"

	"github.com/devgirls-app/health-monitoring-app/internal/api"
	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

// backfillHistory uploads the trailing window of history days, oldest
// first, one day at a time with a pacing delay between days. Days without
// meaningful activity are skipped but the loop still advances. The loop
// hard-stops when the credential becomes invalid mid-run, checked at the
// top of each iteration and on every request result.
func (o *Orchestrator) backfillHistory(ctx context.Context) error {
	userID, ok := o.session.UserID()
	if !ok {
		return nil
	}

	o.setState(StateBackfilling)
	today := models.StartOfDay(o.now())
	o.log.Info("starting history backfill", "days", o.cfg.BackfillDays)

	for i := o.cfg.BackfillDays; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !o.cfg.DryRun && !o.session.IsAuthenticated() {
			return api.ErrUnauthorized
		}

		day := today.AddDate(0, 0, -i)
		dayKey := models.DayKey(day)
		o.stats.DaysScanned++

		snap, err := o.provider.SnapshotFor(ctx, day)
		if err != nil {
			o.log.Warn("history capture failed", "day", dayKey, "error", err)
			o.stats.DaysSkipped++
			if err := o.pace(ctx); err != nil {
				return err
			}
			continue
		}
		if snap == nil || !o.activeEnough(snap) {
			o.stats.DaysSkipped++
			if err := o.pace(ctx); err != nil {
				return err
			}
			continue
		}

		dto := snap.ToDTO(userID, models.SourceHistoryBackfill)
		switch {
		case o.cfg.DryRun:
			o.log.Info("dry-run: would upload history day",
				"day", dayKey, "steps", snap.StepsOrZero(), "sleep_hours", snap.SleepHoursOrZero())
		default:
			if err := o.backend.PostHealthData(ctx, dto); err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return err
				}
				o.log.Warn("history upload failed", "day", dayKey, "error", err)
				o.stats.UploadErrors++
				break
			}
			o.stats.DaysUploaded++

			// Each uploaded day gets its own aggregation trigger so the
			// server recomputes that day's summary from the new samples.
			if _, err := o.backend.RunAggregate(ctx, userID, dayKey); err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return err
				}
				o.log.Warn("history aggregation failed", "day", dayKey, "error", err)
			} else {
				o.stats.AggregatesTriggered++
			}
		}

		if err := o.pace(ctx); err != nil {
			return err
		}
	}

	o.log.Info("history backfill complete",
		"scanned", o.stats.DaysScanned,
		"uploaded", o.stats.DaysUploaded,
		"skipped", o.stats.DaysSkipped)
	return nil
}

// activeEnough reports whether a history day shows enough activity to be
// worth uploading.
func (o *Orchestrator) activeEnough(snap *models.HealthSnapshot) bool {
	return snap.StepsOrZero() > o.cfg.MinSteps || snap.SleepHoursOrZero() > o.cfg.MinSleepHours
}

// pace inserts the fixed inter-day delay, honoring cancellation.
func (o *Orchestrator) pace(ctx context.Context) error {
	return o.wait(ctx, o.cfg.Pacing)
}
