package main

import (
	"context"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/backup"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"
)

// workouts google drive backup cmd

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	credentialsFile := flag.String(
		"gd-creds",
		os.Getenv("FITTRACK_GDRIVE_CREDENTIALS_FILE"),
		"google drive service account credentials json",
	)
	shareWith := flag.String("share-with", "", "email added as a reader to every backup file")
	logsPath := flag.String("logs-path", "", "backup logs file path (empty for stdout)")
	reinit := flag.Bool("reinit", false, "drop all backups and start over")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogToStdout: *logsPath == "",
		LogLevel:    "debug",
		Environment: *env,
	})

	log.Println("staring workouts backup ...")

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	if *credentialsFile == "" {
		log.Fatalln("google drive credentials json not specified, use -gd-creds or FITTRACK_GDRIVE_CREDENTIALS_FILE")
	}
	if exists, err := pkg.PathExists(*credentialsFile, false); err != nil || !exists {
		log.Fatalf("credentials file [%s] not found: %v", *credentialsFile, err)
	}
	credentialsJSON, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Fatalf("unable to read credentials file: %v", err)
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	otelShutdown, err := tracing.HoneycombSetup(honeycombEnabled, "fittrack-backup", nil)
	if err != nil {
		log.Errorf("tracing setup: %s", err)
	}
	defer otelShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     os.Getenv("FITTRACK_POSTGRES_PASS"),
		TracingEnabled: honeycombEnabled,
		MaxConns:       2,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	store, err := backup.NewGDriveStore(ctx, credentialsJSON, *shareWith)
	if err != nil {
		log.Fatalf("failed to create google drive store: %s", err)
	}
	service := backup.NewService(store, workouts.NewRepo(dbPool))

	start := time.Now()
	var count int
	if *reinit {
		log.Println("!! attention: will reinitialize all again...")
		count, err = service.Reinit(ctx, start)
	} else {
		count, err = service.DoBackup(ctx, start)
	}
	if err != nil {
		log.Fatalf("backup failed: %+v", err)
	}
	duration := time.Since(start)
	log.Printf("backup done, %d workouts in %s", count, duration)

	if cfg.BackupSocketDir == "" {
		return
	}
	if err := backup.SendReport(cfg.BackupSocketDir, backup.SocketFileName, count, duration); err != nil {
		log.Warnf("failed to report backup metrics: %s", err)
	}
}
