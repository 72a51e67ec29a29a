package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/devgirls-app/health-monitoring-app/internal/api"
	"github.com/devgirls-app/health-monitoring-app/internal/config"
	"github.com/devgirls-app/health-monitoring-app/internal/health"
	"github.com/devgirls-app/health-monitoring-app/internal/models"
	"github.com/devgirls-app/health-monitoring-app/internal/session"
	syncer "github.com/devgirls-app/health-monitoring-app/internal/sync"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	serverURL := flag.String("server", "", "backend base URL")
	exportDir := flag.String("export", "", "device export directory with per-day reading files")
	stateDir := flag.String("state", "", "session state directory (default ~/.healthsync)")
	days := flag.Int("days", 0, "history backfill window in days (default 14)")
	manualHR := flag.Int("manual-hr", 0, "manual heart rate override for today (0 = none)")
	dryRun := flag.Bool("dry-run", false, "capture and convert but don't send to server")

	doLogin := flag.Bool("login", false, "sign in and store the credential, then exit")
	doRegister := flag.Bool("register", false, "create an account, then exit")
	doForgot := flag.Bool("forgot", false, "request a password reset mail, then exit")
	doReset := flag.Bool("reset", false, "redeem a reset token for a new password, then exit")
	email := flag.String("email", "", "account email (for -login / -register / -forgot)")
	password := flag.String("password", "", "account password (for -login / -register / -reset)")
	name := flag.String("name", "", "first name (for -register)")
	surname := flag.String("surname", "", "surname (for -register)")
	userID := flag.Int("user-id", 0, "numeric user id to cache (for -login)")
	resetToken := flag.String("reset-token", "", "password reset token (for -reset)")
	trends := flag.Int("trends", 0, "show the last N days of aggregates and exit")

	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("healthsync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		config.ApplyEnvOverrides(cfg)
	}

	// Flags win over file and environment.
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *exportDir != "" {
		cfg.Export.Dir = *exportDir
	}
	if *stateDir != "" {
		cfg.State.Dir = *stateDir
	}
	if *days != 0 {
		cfg.Sync.BackfillDays = *days
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")

	if cfg.State.Dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		cfg.State.Dir = filepath.Join(homeDir, ".healthsync")
	}

	if cfg.Server.URL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	store, err := session.Open(cfg.State.Dir)
	if err != nil {
		log.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.NewClient(cfg.Server.URL, store, log)
	client.SetDeviceID(store.DeviceID())
	client.OnSessionExpired(func() {
		log.Warn("session expired, please sign in again with -login")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *doLogin:
		runLogin(ctx, client, store, *email, *password, *userID, log)
	case *doRegister:
		runRegister(ctx, client, *name, *surname, *email, *password, log)
	case *doForgot:
		runForgotPassword(ctx, client, *email, log)
	case *doReset:
		runResetPassword(ctx, client, *resetToken, *password, log)
	case *trends > 0:
		runTrends(ctx, client, store, *trends)
	default:
		runSync(ctx, client, store, cfg, *manualHR, *dryRun, log)
	}
}

func runLogin(ctx context.Context, client *api.Client, store *session.Store, email, password string, userID int, log *slog.Logger) {
	if email == "" || password == "" || userID == 0 {
		fmt.Fprintf(os.Stderr, "Usage: healthsync -login -email <email> -password <password> -user-id <id>\n")
		os.Exit(1)
	}

	token, err := client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
	if err := store.SaveCredential(token); err != nil {
		log.Error("failed to store credential", "error", err)
		os.Exit(1)
	}
	if err := store.SetUserID(userID); err != nil {
		log.Error("failed to store user id", "error", err)
		os.Exit(1)
	}
	log.Info("signed in", "user_id", userID)
}

func runRegister(ctx context.Context, client *api.Client, name, surname, email, password string, log *slog.Logger) {
	if name == "" || email == "" || password == "" {
		fmt.Fprintf(os.Stderr, "Usage: healthsync -register -name <name> -surname <surname> -email <email> -password <password>\n")
		os.Exit(1)
	}

	if err := client.Register(ctx, name, surname, email, password); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
	log.Info("account created, sign in with -login")
}

func runForgotPassword(ctx context.Context, client *api.Client, email string, log *slog.Logger) {
	if email == "" {
		fmt.Fprintf(os.Stderr, "Usage: healthsync -forgot -email <email>\n")
		os.Exit(1)
	}

	if err := client.RequestPasswordReset(ctx, email); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
	log.Info("reset mail requested, check your inbox", "email", email)
}

func runResetPassword(ctx context.Context, client *api.Client, token, newPassword string, log *slog.Logger) {
	if token == "" || newPassword == "" {
		fmt.Fprintf(os.Stderr, "Usage: healthsync -reset -reset-token <token> -password <new password>\n")
		os.Exit(1)
	}

	if err := client.ResetPassword(ctx, token, newPassword); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
	log.Info("password updated, sign in with -login")
}

func runTrends(ctx context.Context, client *api.Client, store *session.Store, days int) {
	userID, ok := store.UserID()
	if !ok {
		fmt.Fprintf(os.Stderr, "No cached user id, sign in with -login first\n")
		os.Exit(1)
	}

	list, err := client.FetchTrends(ctx, userID, days)
	if err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("No trend data yet.")
		return
	}

	fmt.Printf("Last %d days:\n", days)
	for _, row := range list {
		label := "unknown"
		if row.Date != nil {
			label = *row.Date
		}
		trend := ""
		if row.TrendLabel != nil {
			trend = "  " + *row.TrendLabel
		}
		fmt.Printf("  %s  steps=%d  hr=%.0f%s\n",
			label, intOrZero(row.DailySteps), floatOrZero(row.AvgHeartRate), trend)
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func runSync(ctx context.Context, client *api.Client, store *session.Store, cfg *config.Config, manualHR int, dryRun bool, log *slog.Logger) {
	if cfg.Export.Dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: healthsync -server <URL> -export <dir> [-days N] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if dryRun {
		log.Info("DRY RUN mode: readings will be captured and converted but not sent")
	}

	provider := health.NewFileProvider(cfg.Export.Dir)

	events := syncer.Events{
		LocalMetrics: func(snap models.HealthSnapshot) {
			log.Info("local metrics",
				"steps", snap.StepsOrZero(),
				"sleep_hours", snap.SleepHoursOrZero())
		},
		DisplayState: printDisplayState,
	}

	orch := syncer.New(client, provider, store, syncer.Config{
		BackfillDays:  cfg.Sync.BackfillDays,
		Pacing:        cfg.Sync.Pacing(),
		GracePeriod:   cfg.Sync.Grace(),
		MinSteps:      cfg.Sync.MinSteps,
		MinSleepHours: cfg.Sync.MinSleepHours,
		DryRun:        dryRun,
	}, events, log)

	var hr *int
	if manualHR > 0 {
		hr = &manualHR
	}

	stats, err := orch.Run(ctx, hr)
	if err != nil {
		log.Error("sync failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("sync complete")
}

func printDisplayState(state syncer.DisplayState) {
	fmt.Println()
	if state.Profile != nil && state.Profile.Name != nil {
		fmt.Printf("Hello, %s!\n", *state.Profile.Name)
	}
	if best := state.Recommendations.Best; best != nil {
		prefix := ""
		if best.IsWeeklySummary() {
			prefix = "WEEKLY REPORT: "
		}
		fmt.Printf("%s%s\n", prefix, best.RecommendationText)
	} else {
		fmt.Println("Tracking your health. No recommendations yet.")
	}
	printRecList("Weekly Reports", state.Recommendations.Weekly)
	printRecList("Daily Insights", state.Recommendations.Daily)
}

func printRecList(header string, list []models.HealthRecommendation) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", header)
	for _, r := range list {
		severity := "info"
		if r.Severity != nil {
			severity = *r.Severity
		}
		fmt.Printf("  [%s] %s (%s)\n", severity, r.RecommendationText, r.CreatedDayKey())
	}
}

func printStats(stats *syncer.Stats) {
	if stats == nil {
		return
	}
	fmt.Println()
	fmt.Println("=== Sync Summary ===")
	fmt.Printf("  Today uploaded:     %v\n", stats.TodayUploaded)
	fmt.Printf("  Profile synced:     %v\n", stats.ProfileSynced)
	fmt.Println()
	fmt.Printf("  History scanned:    %d days\n", stats.DaysScanned)
	fmt.Printf("  History uploaded:   %d\n", stats.DaysUploaded)
	fmt.Printf("  History skipped:    %d (no data or inactive)\n", stats.DaysSkipped)
	fmt.Printf("  Upload errors:      %d\n", stats.UploadErrors)
	fmt.Println()
	fmt.Printf("  Aggregates run:     %d\n", stats.AggregatesTriggered)
	fmt.Printf("  Weekly summary:     %v\n", stats.WeeklySummaryTriggered)
	fmt.Printf("  Recommendations:    %d\n", stats.RecommendationsLoaded)
	fmt.Println()
}
