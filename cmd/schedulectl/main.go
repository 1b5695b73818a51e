package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tutorlane/scheduling/internal/availability"
	"github.com/tutorlane/scheduling/internal/repository"
	"github.com/tutorlane/scheduling/internal/service"
	"github.com/tutorlane/scheduling/pkg/cache"
	"github.com/tutorlane/scheduling/pkg/config"
	"github.com/tutorlane/scheduling/pkg/database"
	"github.com/tutorlane/scheduling/pkg/logger"
)

const usage = `usage: schedulectl <command> [flags]

commands:
  decode   print the day/segment table for a stored pattern string
  grid     print the month grid for a tutor
  export   render a tutor's week to csv or pdf on stdout
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	var runErr error
	switch os.Args[1] {
	case "decode":
		runErr = runDecode(os.Args[2:])
	case "grid":
		runErr = runGrid(cfg, logr, os.Args[2:])
	case "export":
		runErr = runExport(cfg, logr, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if runErr != nil {
		logr.Sugar().Fatalw("command failed", "command", os.Args[1], "error", runErr)
	}
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	pattern := fs.String("pattern", "", "comma-separated pattern string")
	fs.Parse(args) //nolint:errcheck

	p := availability.Decode(*pattern)
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	fmt.Println("day  morning afternoon evening  value")
	for day := 0; day < availability.DaysPerWeek; day++ {
		fmt.Printf("%-4s %-7v %-9v %-7v  %d\n", days[day],
			p[day][0], p[day][1], p[day][2], p.DayValue(day))
	}
	fmt.Printf("round-trip: %q\n", availability.Encode(p))
	return nil
}

func runGrid(cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	tutorID := fs.String("tutor", "", "tutor id")
	timezone := fs.String("timezone", cfg.Scheduling.DefaultTimezone, "IANA timezone")
	fs.Parse(args) //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	metrics := service.NewMetricsService()
	sched, err := service.NewScheduleService(
		repository.NewLessonRepository(db), cacheRepo, metrics, logr,
		service.ScheduleOptions{
			TutorID:     *tutorID,
			Timezone:    *timezone,
			CacheTTL:    cfg.Scheduling.LessonCacheTTL,
			RowHeight:   cfg.Scheduling.RowHeight,
			BlockHeight: cfg.Scheduling.BlockHeight,
		})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Refresh(ctx); err != nil {
		return err
	}

	for i, cell := range sched.Grid() {
		marker := " "
		if cell.Booked {
			marker = "*"
		}
		if !cell.InPeriod {
			marker += "."
		}
		fmt.Printf("%s%-2s", cell.Date.Format("02"), marker)
		if (i+1)%7 == 0 {
			fmt.Println()
		}
	}
	snap := metrics.Snapshot()
	logr.Sugar().Infow("grid rendered", "fetches", snap.Fetches, "cache_hits", snap.CacheHits)
	return nil
}

func runExport(cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	tutorID := fs.String("tutor", "", "tutor id")
	timezone := fs.String("timezone", cfg.Scheduling.DefaultTimezone, "IANA timezone")
	week := fs.String("week", "", "any date inside the week, YYYY-MM-DD (default: this week)")
	format := fs.String("format", service.FormatCSV, "csv or pdf")
	fs.Parse(args) //nolint:errcheck

	weekStart := time.Now()
	if *week != "" {
		parsed, err := time.Parse("2006-01-02", *week)
		if err != nil {
			return fmt.Errorf("parse week: %w", err)
		}
		weekStart = parsed
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := service.NewExportService(
		repository.NewLessonRepository(db), service.NewMetricsService(), logr,
		service.ExportOptions{
			StorageDir:  cfg.Exports.StorageDir,
			Concurrency: cfg.Exports.WorkerConcurrency,
			Retries:     cfg.Exports.WorkerRetries,
		})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	out, err := exporter.RenderWeek(ctx, *tutorID, weekStart, *timezone, *format)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
