package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serpavi_estimator/config"
	"serpavi_estimator/httputil"
	"serpavi_estimator/logging"
	"serpavi_estimator/models"
	"serpavi_estimator/scheduler"
	"serpavi_estimator/scraper"
	"serpavi_estimator/server"
	"serpavi_estimator/services"
	"serpavi_estimator/storage"
	"serpavi_estimator/workers"
)

var (
	estimateRef = flag.String("estimate", "", "Run one estimate for the given cadastral reference and exit")
	energyLabel = flag.String("label", "", "Energy label A-G (one-shot mode)")
	condition   = flag.String("condition", "", "Conservation state (one-shot mode)")
	floor       = flag.String("floor", "", "Floor number (one-shot mode)")
	debugMode   = flag.Bool("debug", false, "Capture debug evidence on failure (one-shot mode)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Printf("Starting serpavi_estimator (target: %s)", cfg.Site.AppURL)

	artifacts := workers.NewArtifactStore(cfg.ArtifactsDir)
	pipeline := scraper.NewPipeline(cfg, artifacts)

	// One-shot mode runs the pipeline directly, without stores or server.
	if *estimateRef != "" {
		runOnce(pipeline, *estimateRef)
		return
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var archive *storage.PostgresStore
	if cfg.ArchiveDBURL != "" {
		archive, err = storage.NewPostgresStore(ctx, cfg.ArchiveDBURL)
		if err != nil {
			log.Printf("Warning: archive unavailable, continuing without it: %v", err)
		} else {
			defer archive.Close()
			log.Println("Connected to estimate archive")
		}
	}

	svc := services.NewEstimateService(pipeline, store, archive)
	clients := httputil.NewClients()

	var uploader workers.Uploader = workers.NewNoOpUploader()
	if cfg.S3.Enabled() {
		s3up, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: S3 uploader unavailable: %v", err)
		} else {
			uploader = s3up
			log.Printf("Debug artifacts upload to bucket %s", cfg.S3.Bucket)
		}
	}

	artifactWorker := workers.NewArtifactWorker(cfg.ArtifactsDir, uploader)
	go artifactWorker.Run(ctx, 2*time.Minute)

	connectivityWorker := workers.NewConnectivityWorker(store, clients, cfg.Site.AppURL)
	go connectivityWorker.Run(ctx, 24*time.Hour)
	log.Println("Workers started")

	sched := scheduler.New(&cfg.Scheduler, store)
	sched.SetWorkers(connectivityWorker, artifactWorker)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      server.New(svc, clients, cfg.Site).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Pipeline.GlobalTimeout + 30*time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	log.Println("Goodbye!")
}

func runOnce(pipeline *scraper.Pipeline, ref string) {
	req := &models.EstimateRequest{
		CadastralRef: ref,
		EnergyLabel:  *energyLabel,
		Condition:    *condition,
		Floor:        *floor,
		Debug:        *debugMode,
	}

	result := pipeline.Estimate(context.Background(), req)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal result: %v", err)
	}
	os.Stdout.Write(append(out, '\n'))

	if result.Status != models.StatusOK {
		os.Exit(1)
	}
}
