package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/gymcoach/internal/config"
	"github.com/2beens/gymcoach/internal/logging"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/storage/backup"

	log "github.com/sirupsen/logrus"
)

// one-shot backup of the user db document to google drive

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	credentialsFile := flag.String("gd-creds", "", "google service account credentials json (overrides the config)")
	logsPath := flag.String("logs-path", "", "backup logs file path (empty for stdout)")
	timeout := flag.Duration("timeout", 2*time.Minute, "max duration of the whole backup")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	log.Println("starting user db backup ...")

	if cfg.StoreBackend != config.StoreBackendSheets {
		log.Fatalf("db backup supports the sheets store only, got [%s]", cfg.StoreBackend)
	}

	credsPath := cfg.GoogleCredentialsPath
	if *credentialsFile != "" {
		credsPath = *credentialsFile
	}
	if credsPath == "" {
		log.Fatalln("google credentials json not specified")
	}
	credentials, err := os.ReadFile(credsPath)
	if err != nil {
		log.Fatalf("unable to read credentials file: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sheetsService, driveService, err := storage.NewGoogleServices(ctx, credentials, nil)
	if err != nil {
		log.Fatalf("create google services: %s", err)
	}

	gateway := storage.NewGateway(storage.NewSheetsBackend(sheetsService, driveService, storage.SheetsParams{
		SpreadsheetID:   cfg.SpreadsheetID,
		SpreadsheetName: cfg.SpreadsheetName,
		Cell:            cfg.SpreadsheetCell,
	}), nil)

	s, err := backup.NewDriveBackupService(ctx, backup.DriveBackupParams{
		Source:         gateway,
		Drive:          driveService,
		FolderName:     cfg.BackupFolderName,
		ShareWithEmail: cfg.BackupShareWithEmail,
	})
	if err != nil {
		log.Fatalf("failed to create google drive backup service: %s", err)
	}

	fileName, err := s.DoBackup(ctx, time.Now())
	if err != nil {
		log.Fatalf("backup failed: %s", err)
	}
	log.Printf("backup done: %s", fileName)
}
