// cmd/waddle/main.go - Entry point and dependency injection
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/dominikstraub/Waddle/internal/config"
	"github.com/dominikstraub/Waddle/internal/database"
	"github.com/dominikstraub/Waddle/internal/importer"
	"github.com/dominikstraub/Waddle/internal/parser"
	"github.com/dominikstraub/Waddle/internal/web"
)

type App struct {
	cfg       *config.Config
	db        *database.SQLiteDB
	cron      *cron.Cron
	server    *http.Server
	importer  *importer.Service
	shutdown  chan os.Signal
	importCtx context.Context
	cancel    context.CancelFunc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	app := &App{
		cfg:      cfg,
		shutdown: make(chan os.Signal, 1),
	}

	// Initialize components
	if err := app.init(); err != nil {
		log.Fatal("Failed to initialize app: ", err)
	}

	// Start services
	if err := app.start(); err != nil {
		log.Fatal("Failed to start app: ", err)
	}

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	// Graceful shutdown
	app.stop()
}

func (app *App) init() error {
	if err := app.cfg.EnsureDirs(); err != nil {
		return err
	}

	db, err := database.NewSQLiteDB(app.cfg.DBPath)
	if err != nil {
		return err
	}
	app.db = db

	gpxParser := parser.NewGPXParser(
		parser.WithWorkers(app.cfg.ParseWorkers),
		parser.WithMaxElements(app.cfg.MaxElements),
	)

	app.importer = importer.NewService(gpxParser, app.db, app.cfg.InboxDir, app.cfg.ArchiveDir)
	app.importCtx, app.cancel = context.WithCancel(context.Background())

	// Setup cron scheduler
	app.cron = cron.New()

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	web.NewWebHandler(app.db, gpxParser, app.cfg.MaxUploadBytes).RegisterRoutes(router)

	app.server = &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (app *App) start() error {
	// Start cron scheduler
	_, err := app.cron.AddFunc(app.cfg.ImportSchedule, func() {
		log.Println("Starting scheduled import...")
		if _, err := app.importer.Import(app.importCtx); err != nil {
			log.Printf("Import failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid import schedule %q: %w", app.cfg.ImportSchedule, err)
	}
	app.cron.Start()

	// Start web server
	go func() {
		log.Printf("Server starting on %s", app.cfg.ListenAddr)
		if err := app.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

func (app *App) stop() {
	log.Println("Shutting down...")

	// Stop cron and any running import
	app.cancel()
	<-app.cron.Stop().Done()

	// Stop web server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Close database
	if app.db != nil {
		app.db.Close()
	}

	log.Println("Shutdown complete")
}
