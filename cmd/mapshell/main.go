// Command mapshell drives a map screen from the terminal: type a query,
// pick a result and switch modes to see the estimated travel time.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/wayfinder/internal/adapters/locator"
	"github.com/samirrijal/wayfinder/internal/adapters/nominatim"
	"github.com/samirrijal/wayfinder/internal/adapters/osrm"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
	"github.com/samirrijal/wayfinder/internal/pkg/config"
	"github.com/samirrijal/wayfinder/internal/pkg/logging"
)

const service = "wayfinder-mapshell"

func main() {
	cfg, err := config.Load(service)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// Logs go to stderr so they don't interleave with the screen output.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text", service))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	router := osrm.New(cfg.Router.BaseURL, cfg.Router.Timeout)
	loc := locator.NewStatic(domain.Coordinate{Lat: cfg.Location.FixedLat, Lon: cfg.Location.FixedLon}, cfg.Location.Granted)

	out := newPrinter(os.Stdout)
	screen := usecases.NewScreen(ctx, "mapshell", usecases.ScreenOptions{
		Search:         usecases.NewPlaceSearchService(geocoder, cfg.Search.MinQueryLength, cfg.Geocoder.Limit),
		Routes:         usecases.NewRouteService(router),
		Locator:        loc,
		Notify:         out.state,
		SearchDebounce: cfg.Search.Debounce,
		DefaultCenter:  domain.Coordinate{Lat: cfg.Location.DefaultLat, Lon: cfg.Location.DefaultLon},
	})
	defer screen.Close()

	if err := screen.Start(ctx); err != nil {
		slog.Warn("no location, map stays at the default center",
			"error", err, "lat", cfg.Location.DefaultLat, "lon", cfg.Location.DefaultLon)
	}
	out.help()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	sh := &shell{screen: screen, locator: loc, out: out}
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			quit, err := sh.execute(ctx, line)
			if err != nil {
				fmt.Fprintln(os.Stdout, "error:", err)
			}
			if quit {
				return
			}
		}
	}
}
