package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

// dayReading is the on-disk shape of one exported day: a JSON file named
// "yyyy-MM-dd.json" in the export directory.
type dayReading struct {
	Steps            *int     `json:"steps"`
	AverageHeartRate *int     `json:"averageHeartRate"`
	Calories         *float64 `json:"calories"`
	SleepHours       *float64 `json:"sleepHours"`
	Distance         *float64 `json:"distance"`
}

// profileReading is the optional "profile.json" file carrying demographics.
// It is merged into today's snapshot only, matching how the device source
// exposes characteristics separately from daily samples.
type profileReading struct {
	Age    *int     `json:"age"`
	Gender *string  `json:"gender"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

// FileProvider reads exported day readings from a directory.
type FileProvider struct {
	dir string
	now func() time.Time
}

var _ SnapshotProvider = (*FileProvider)(nil)

// NewFileProvider creates a provider over an export directory.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir, now: time.Now}
}

// RequestAuthorization reports whether the export directory is readable.
func (p *FileProvider) RequestAuthorization(_ context.Context) (bool, error) {
	info, err := os.Stat(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("checking export dir %s: %w", p.dir, err)
	}
	return info.IsDir(), nil
}

// TodaySnapshot reads today's readings and merges the demographics file.
func (p *FileProvider) TodaySnapshot(ctx context.Context, manualHeartRate *int) (*models.HealthSnapshot, error) {
	now := p.now()
	snap, err := p.read(ctx, now)
	if err != nil || snap == nil {
		return nil, err
	}
	snap.ManualHeartRate = manualHeartRate
	snap.Timestamp = models.NewLocalTime(now)

	if prof, err := p.readProfile(); err == nil && prof != nil {
		snap.Age = prof.Age
		snap.Gender = prof.Gender
		snap.Height = prof.Height
		snap.Weight = prof.Weight
	}
	return snap, nil
}

// SnapshotFor reads a past day's readings. Demographics are not attached.
func (p *FileProvider) SnapshotFor(ctx context.Context, day time.Time) (*models.HealthSnapshot, error) {
	snap, err := p.read(ctx, day)
	if err != nil || snap == nil {
		return nil, err
	}
	snap.Timestamp = models.NewLocalTime(models.StartOfDay(day))
	return snap, nil
}

func (p *FileProvider) read(ctx context.Context, day time.Time) (*models.HealthSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, models.DayKey(day)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var reading dayReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &models.HealthSnapshot{
		Steps:            reading.Steps,
		AverageHeartRate: reading.AverageHeartRate,
		Calories:         reading.Calories,
		SleepHours:       reading.SleepHours,
		Distance:         reading.Distance,
	}, nil
}

func (p *FileProvider) readProfile() (*profileReading, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, "profile.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var prof profileReading
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, err
	}
	return &prof, nil
}
