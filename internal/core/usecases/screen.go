package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/ports"
	"github.com/samirrijal/wayfinder/internal/pkg/debounce"
	"github.com/samirrijal/wayfinder/internal/pkg/geospatial"
	"github.com/samirrijal/wayfinder/internal/pkg/metrics"
)

// DefaultSearchDebounce is the quiet period before a typed query is sent.
const DefaultSearchDebounce = 400 * time.Millisecond

// ScreenOptions wires a Screen to its collaborators.
type ScreenOptions struct {
	Search  *PlaceSearchService
	Routes  *RouteService
	Locator ports.LocationProvider
	// Publisher and Notify are optional.
	Publisher ports.EventPublisher
	Notify    func(domain.ScreenState)

	SearchDebounce time.Duration
	RegionDelta    float64
	// DefaultCenter frames the map until the first fix. Zero means
	// domain.DefaultCenter.
	DefaultCenter domain.Coordinate
	Logger        *slog.Logger
}

// Screen is the state machine behind one map screen. Transitions and the
// completions of background search and route requests are applied under a
// single lock; a completion whose generation is no longer current is
// dropped.
type Screen struct {
	id        string
	search    *PlaceSearchService
	routes    *RouteService
	locator   ports.LocationProvider
	publisher ports.EventPublisher
	notify    func(domain.ScreenState)
	delta     float64
	log       *slog.Logger

	ctx            context.Context
	cancel         context.CancelFunc
	searchDebounce *debounce.Debouncer
	routeDebounce  *debounce.Debouncer

	mu        sync.Mutex
	state     domain.ScreenState
	polyline  *domain.CachedPolyline
	searchGen uint64
	routeGen  uint64
	closed    bool

	notifyMu     sync.Mutex
	lastNotified uint64
}

// NewScreen creates a screen in its initial state: no location, no query,
// driving mode. ctx bounds every background request the screen starts.
func NewScreen(ctx context.Context, id string, opts ScreenOptions) *Screen {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.RegionDelta <= 0 {
		opts.RegionDelta = geospatial.DefaultRegionDelta
	}
	if opts.DefaultCenter == (domain.Coordinate{}) || !opts.DefaultCenter.Valid() {
		opts.DefaultCenter = domain.DefaultCenter
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	initial := geospatial.RegionAround(opts.DefaultCenter, opts.RegionDelta)

	ctx, cancel := context.WithCancel(ctx)
	s := &Screen{
		id:             id,
		search:         opts.Search,
		routes:         opts.Routes,
		locator:        opts.Locator,
		publisher:      opts.Publisher,
		notify:         opts.Notify,
		delta:          opts.RegionDelta,
		log:            opts.Logger.With("screen_id", id),
		ctx:            ctx,
		cancel:         cancel,
		searchDebounce: debounce.New(opts.SearchDebounce),
		routeDebounce:  debounce.New(0),
		state: domain.ScreenState{
			ScreenID: id,
			Mode:     domain.DefaultMode,
			Results:  []domain.PlaceResult{},
			Camera:   &domain.CameraHint{Kind: domain.CameraRegion, Region: &initial},
		},
	}
	metrics.ActiveScreens.Inc()
	return s
}

// ID returns the screen identifier.
func (s *Screen) ID() string { return s.id }

// Start asks for location permission and takes the first position fix.
func (s *Screen) Start(ctx context.Context) error {
	granted, err := s.locator.RequestPermission(ctx)
	if err != nil {
		s.failLocation(domain.KindLocationUnavailable, domain.MsgLocationUnavailable)
		return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	if !granted {
		s.failLocation(domain.KindPermissionDenied, domain.MsgPermissionDenied)
		return domain.ErrPermissionDenied
	}

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		s.failLocation(domain.KindLocationUnavailable, domain.MsgLocationUnavailable)
		return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return s.SetLocation(pos)
}

// SetLocation records a position fix. The first fix centers the camera on
// it; every fix re-runs the current search since distances changed.
func (s *Screen) SetLocation(c domain.Coordinate) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, c)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	first := s.state.Location == nil
	s.applyLocationLocked(c)
	if first {
		s.centerLocked(c)
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventLocationUpdated, c)
	return nil
}

// Recenter takes a fresh fix and moves the camera to it. On failure the
// previous location is kept and an error is shown.
func (s *Screen) Recenter(ctx context.Context) error {
	pos, err := s.locator.CurrentPosition(ctx)
	if err == nil && !pos.Valid() {
		err = fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, pos)
	}
	if err != nil {
		s.failLocation(domain.KindLocationUnavailable, domain.MsgLocationUnavailable)
		return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.applyLocationLocked(pos)
	s.centerLocked(pos)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventLocationUpdated, pos)
	return nil
}

// SetQuery updates the search text and (re)starts the debounced search.
func (s *Screen) SetQuery(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = text
	s.scheduleSearchLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, "", nil)
}

// SetSearchFocus shows or hides the results overlay.
func (s *Screen) SetSearchFocus(focused bool) {
	s.mu.Lock()
	if s.closed || s.state.SearchFocused == focused {
		s.mu.Unlock()
		return
	}
	s.state.SearchFocused = focused
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, "", nil)
}

// SelectResult makes the result with placeID the destination, copies its
// name into the search box and closes the overlay.
func (s *Screen) SelectResult(placeID int64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	place, ok := FindByID(s.state.Results, placeID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", domain.ErrPlaceNotFound, placeID)
	}

	dest := domain.Destination{Location: place.Location, Name: place.DisplayName}
	s.state.Destination = &dest
	s.state.Query = place.DisplayName
	s.state.SearchFocused = false
	s.scheduleSearchLocked()
	s.startRouteLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventDestinationSelected, dest)
	return nil
}

// SetDestination sets an explicit destination and starts a route estimate.
func (s *Screen) SetDestination(c domain.Coordinate, name string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, c)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	dest := domain.Destination{Location: c, Name: name}
	s.state.Destination = &dest
	s.startRouteLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventDestinationSelected, dest)
	return nil
}

// SetMode switches the transport mode and re-estimates the route.
func (s *Screen) SetMode(mode domain.TransportMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}

	s.mu.Lock()
	if s.closed || s.state.Mode == mode {
		s.mu.Unlock()
		return nil
	}
	s.state.Mode = mode
	s.startRouteLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventModeChanged, mode)
	return nil
}

// ClearSearch drops the query, results, destination and route, and
// cancels any pending search or route request.
func (s *Screen) ClearSearch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.searchGen++
	s.routeGen++
	s.searchDebounce.Cancel()
	s.routeDebounce.Cancel()

	s.state.Query = ""
	s.state.Results = []domain.PlaceResult{}
	s.state.Searching = false
	s.state.Destination = nil
	s.state.DurationSecs = nil
	s.state.RoutePoints = nil
	s.state.RoutePending = false
	s.polyline = nil
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventSearchCleared, nil)
}

// Snapshot returns a copy of the current state.
func (s *Screen) Snapshot() domain.ScreenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close cancels all pending work. Later transitions are ignored.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.searchGen++
	s.routeGen++
	s.mu.Unlock()

	s.searchDebounce.Cancel()
	s.routeDebounce.Cancel()
	s.cancel()
	metrics.ActiveScreens.Dec()
}

func (s *Screen) applyLocationLocked(c domain.Coordinate) {
	s.state.Location = &c
	if s.state.Error != nil {
		switch s.state.Error.Kind {
		case domain.KindPermissionDenied, domain.KindLocationUnavailable:
			s.state.Error = nil
		}
	}
	s.scheduleSearchLocked()
}

func (s *Screen) centerLocked(c domain.Coordinate) {
	region := geospatial.RegionAround(c, s.delta)
	s.state.Camera = &domain.CameraHint{Kind: domain.CameraRegion, Region: &region}
	s.state.CameraRevision++
}

func (s *Screen) failLocation(kind domain.ErrorKind, msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Error = &domain.ScreenError{Kind: kind, Message: msg}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.log.Warn("location error", "kind", kind)
	s.emit(snap, domain.EventLocationFailed, kind)
}

// scheduleSearchLocked supersedes any running search. Queries that are too
// short, or a missing location, clear the results immediately.
func (s *Screen) scheduleSearchLocked() {
	s.searchGen++
	gen := s.searchGen

	if !s.search.Searchable(s.state.Query) || s.state.Location == nil {
		s.searchDebounce.Cancel()
		s.state.Results = []domain.PlaceResult{}
		s.state.Searching = false
		return
	}

	query, ref := s.state.Query, *s.state.Location
	s.state.Searching = true
	s.searchDebounce.Trigger(s.ctx, func(ctx context.Context) {
		s.runSearch(ctx, gen, query, ref)
	})
}

func (s *Screen) runSearch(ctx context.Context, gen uint64, query string, ref domain.Coordinate) {
	results, err := s.search.Search(ctx, query, &ref)

	s.mu.Lock()
	if s.closed || gen != s.searchGen {
		s.mu.Unlock()
		metrics.SearchesSuperseded.Inc()
		return
	}
	s.state.Searching = false
	if err != nil {
		// Keep the previous results on screen.
		snap := s.commitLocked()
		s.mu.Unlock()
		s.log.Warn("place search failed", "kind", domain.KindSearchRequestFailed, "error", err)
		s.emit(snap, domain.EventSearchFailed, nil)
		return
	}
	s.state.Results = results
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap, domain.EventSearchCompleted, map[string]any{"query": query, "count": len(results)})
}

// startRouteLocked invalidates the current duration and supersedes any
// running route request before starting a new one.
func (s *Screen) startRouteLocked() {
	s.routeGen++
	gen := s.routeGen
	s.state.DurationSecs = nil

	if s.state.Destination == nil || s.state.Location == nil {
		s.routeDebounce.Cancel()
		s.state.RoutePending = false
		return
	}

	origin := *s.state.Location
	dest := s.state.Destination.Location
	mode := s.state.Mode
	cached := s.polyline
	s.state.RoutePending = true
	s.routeDebounce.Trigger(s.ctx, func(ctx context.Context) {
		s.runRoute(ctx, gen, origin, dest, mode, cached)
	})
}

func (s *Screen) runRoute(
	ctx context.Context,
	gen uint64,
	origin, dest domain.Coordinate,
	mode domain.TransportMode,
	cached *domain.CachedPolyline,
) {
	est, err := s.routes.Estimate(ctx, origin, dest, mode, cached)

	s.mu.Lock()
	if s.closed || gen != s.routeGen {
		s.mu.Unlock()
		return
	}
	s.state.RoutePending = false

	if err != nil {
		// Duration stays unknown; the polyline on screen is left as is.
		snap := s.commitLocked()
		s.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			metrics.RouteFailures.WithLabelValues(string(mode)).Inc()
			s.log.Warn("route estimate failed", "kind", domain.KindRouteRequestFailed, "mode", mode, "error", err)
		}
		s.emit(snap, domain.EventRouteFailed, map[string]any{"mode": mode})
		return
	}

	d := est.DurationSeconds
	s.state.DurationSecs = &d
	switch {
	case est.PolylineFetched && len(est.Points) > 0:
		s.polyline = &domain.CachedPolyline{Destination: dest, Points: est.Points}
		s.state.RoutePoints = est.Points
		if mode == domain.ModeDriving {
			if b, ok := geospatial.Bounds(est.Points); ok {
				pad := domain.RouteFitPadding
				s.state.Camera = &domain.CameraHint{Kind: domain.CameraFit, Bounds: &b, Padding: &pad}
				s.state.CameraRevision++
			}
		}
	case cached.Matches(dest) && len(est.Points) > 0:
		s.state.RoutePoints = est.Points
	case !cached.Matches(dest):
		// No shape for this destination; don't keep drawing the old one.
		s.state.RoutePoints = nil
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	metrics.RouteEstimates.WithLabelValues(string(mode), string(est.Source)).Inc()
	s.emit(snap, domain.EventRouteEstimated, map[string]any{
		"mode":             mode,
		"duration_seconds": est.DurationSeconds,
		"distance_km":      est.DistanceKm,
		"source":           est.Source,
	})
}

func (s *Screen) commitLocked() domain.ScreenState {
	s.state.Revision++
	return s.snapshotLocked()
}

func (s *Screen) snapshotLocked() domain.ScreenState {
	st := s.state
	if st.Location != nil {
		loc := *st.Location
		st.Location = &loc
	}
	if st.DurationSecs != nil {
		d := *st.DurationSecs
		st.DurationSecs = &d
		st.DurationText = domain.FormatDuration(d)
	}
	st.Results = append([]domain.PlaceResult(nil), s.state.Results...)
	if st.Results == nil {
		st.Results = []domain.PlaceResult{}
	}
	st.Loading = st.Location == nil && st.Error == nil
	st.NoResults = utf8.RuneCountInString(st.Query) > 2 && len(st.Results) == 0 && !st.Searching
	st.ShowDuration = st.DurationSecs != nil && st.Destination != nil && !st.SearchFocused
	return st
}

// emit delivers snap to the observer unless a newer revision already went
// out, then publishes the event, if any.
func (s *Screen) emit(snap domain.ScreenState, kind domain.ScreenEventKind, payload any) {
	if s.notify != nil {
		s.notifyMu.Lock()
		if snap.Revision > s.lastNotified {
			s.lastNotified = snap.Revision
			s.notify(snap)
		}
		s.notifyMu.Unlock()
	}

	if kind == "" || s.publisher == nil {
		return
	}
	ev := &domain.ScreenEvent{ScreenID: s.id, Kind: kind, At: time.Now().UTC(), Payload: payload}
	if err := s.publisher.PublishScreenEvent(s.ctx, ev); err != nil {
		s.log.Debug("publish screen event", "kind", kind, "error", err)
	}
}
