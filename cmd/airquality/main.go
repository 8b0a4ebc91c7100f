package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bbernstein/airquality/internal/config"
	"github.com/bbernstein/airquality/internal/gios"
	"github.com/bbernstein/airquality/internal/models"
	"github.com/bbernstein/airquality/internal/plot"
	"github.com/bbernstein/airquality/internal/search"
	"github.com/bbernstein/airquality/pkg/http/client"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const (
	fetchingMessage  = "Fetching data, please wait..."
	noMatchMessage   = "No stations found following given input"
	invalidMessage   = "Invalid input"
	closeViewerAsk   = "Press Enter to close the plot viewer..."
	viewerURLMessage = "Plot available at %s\n"
)

var exit = os.Exit // Allow mocking of os.Exit in tests

// API is the part of the GIOS client the program needs
type API interface {
	ListAllStations(ctx context.Context) ([]json.RawMessage, error)
	models.Fetcher
}

type app struct {
	api     API
	console *search.Console
	plot    plot.Options
	// show blocks while the page is displayed; ready is called with its URL
	show func(ctx context.Context, page plot.Page, ready func(url string)) error
}

func main() {
	runID := uuid.NewString()

	cfg, err := config.Load()
	if err != nil {
		config.New().InitializeLogging(os.Stderr, runID)
		log.Error().Err(err).Msg("Failed to load configuration")
		exit(1)
		return
	}
	cfg.InitializeLogging(os.Stderr, runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	api := gios.NewClient(
		client.New(client.Options{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.HTTPTimeout,
		}),
		cfg.Endpoints,
		gios.NewMetrics(registry),
	)

	viewerOpts := plot.ViewerOptions{
		Addr:    cfg.ViewerAddr,
		Metrics: registry,
	}
	if cfg.OpenBrowser {
		viewerOpts.Open = plot.OpenBrowser
	}

	a := &app{
		api:     api,
		console: search.NewConsole(os.Stdin, os.Stdout),
		plot:    plot.Options{Width: cfg.PlotWidth, Height: cfg.PlotHeight},
		show: func(ctx context.Context, page plot.Page, ready func(url string)) error {
			opts := viewerOpts
			opts.Ready = ready
			return plot.NewViewer(opts).Show(ctx, page)
		},
	}

	if err := a.run(ctx); err != nil {
		log.Error().Err(err).Msg("airquality failed")
		stop()
		exit(1)
	}
}

// run fetches the station directory, lets the user pick a station and shows its plot.
// The two user-facing dead ends of the search print a message and return nil.
func (a *app) run(ctx context.Context) error {
	a.console.Printf("%s\n", fetchingMessage)

	raws, err := a.api.ListAllStations(ctx)
	if err != nil {
		return err
	}
	stations, err := models.NewStations(raws)
	if err != nil {
		return fmt.Errorf("decoding station directory: %w", err)
	}
	log.Info().Int("stations", len(stations)).Msg("Station directory loaded")

	station, err := search.NewFlow(a.console).Run(ctx, stations)
	var noMatch *search.NoMatchError
	var invalid *search.InvalidSelectionError
	switch {
	case errors.As(err, &noMatch):
		a.console.Printf("%s\n", noMatchMessage)
		return nil
	case errors.As(err, &invalid):
		a.console.Printf("%s\n", invalidMessage)
		return nil
	case err != nil:
		return err
	}

	png, err := plot.NewRenderer(a.api, a.plot).Render(ctx, station)
	if err != nil {
		return err
	}
	a.console.Printf("%d\t%s\n", station.ID(), station.Name())

	viewCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()
	ready := func(url string) {
		a.console.Printf(viewerURLMessage, url)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.console.Ask(viewCtx, closeViewerAsk); err == nil {
				cancel()
			}
		}()
	}

	return a.show(viewCtx, plot.Page{Title: station.Name(), PNG: png}, ready)
}
