package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tilevision/tilevision/internal/capture"
	"github.com/tilevision/tilevision/internal/config"
	"github.com/tilevision/tilevision/internal/gallery"
	"github.com/tilevision/tilevision/internal/gemini"
	"github.com/tilevision/tilevision/internal/genclient"
	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/notify"
	"github.com/tilevision/tilevision/internal/scraper"
	"github.com/tilevision/tilevision/internal/server"
	"github.com/tilevision/tilevision/internal/tiles"
	"github.com/tilevision/tilevision/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "tilevision",
	Short: "Room redesign studio",
	Long:  "Tilevision Studio\n\nCapture a photo of your room, pick what should change, and compare\nAI-generated redesigns side by side until one is worth keeping.",
	Run:   runStudio,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tilevision v%s\n", Version)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation API service",
	Long:  "Run the HTTP service that serves tile images and generates room redesigns through the Gemini image model.",
	Run:   runServe,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Build the tile catalog from a product listing",
	Long:  "Crawl a paginated tile product listing, download product images, and write the catalog the generation service serves from.",
	Args:  cobra.MaximumNArgs(1),
	Run:   runScrape,
}

func applyVerbosity(cmd *cobra.Command) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetVerbose()
	}
}

func runStudio(cmd *cobra.Command, args []string) {
	applyVerbosity(cmd)

	cfg, err := config.LoadStudio()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	gal, err := gallery.Open(cfg.GalleryDir)
	if err != nil {
		log.Fatalf("opening gallery: %v", err)
	}

	notifier, err := notify.New()
	if err != nil {
		log.Debugf("desktop notifications disabled: %v", err)
		notifier = nil
	}

	camera := &capture.FFmpegCamera{
		Device: cfg.CameraDevice,
		Width:  cfg.CaptureWidth,
		Height: cfg.CaptureHeight,
	}
	client := genclient.New(cfg.ServiceURL, genclient.WithTimeout(cfg.RequestTimeout))

	model := tui.NewModel(cfg, camera, client, gal, notifier)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	applyVerbosity(cmd)

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if cfg.LogFile != "" {
		log.EnableFileLogging(cfg.LogFile)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	catalog, err := tiles.Load(afero.NewOsFs(), cfg.TilesDataDir)
	if err != nil {
		log.Fatalf("loading tile catalog: %v", err)
	}
	log.Infof("loaded %d tiles from %s", catalog.Len(), cfg.TilesDataDir)

	generator := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	srv := server.New(catalog, generator, cfg.CORSOrigin)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.ListenAddr)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func runScrape(cmd *cobra.Command, args []string) {
	applyVerbosity(cmd)

	cfg, err := config.LoadScraper()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if len(args) > 0 {
		cfg.StartURL = args[0]
	}
	if cfg.StartURL == "" {
		log.Fatal("no listing URL given; pass one as an argument or set TILEVISION_SCRAPE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := scraper.New(afero.NewOsFs(), cfg.OutputDir, cfg.RequestDelay, cfg.MaxPages)
	if err := s.Run(ctx, cfg.StartURL); err != nil {
		log.Fatalf("scrape: %v", err)
	}
	log.Infof("catalog written to %s", cfg.OutputDir)
}
