package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/samirrijal/wayfinder/internal/adapters/locator"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
)

var errUsage = errors.New("usage")

type shell struct {
	screen  *usecases.Screen
	locator *locator.Static
	out     *printer
}

// execute runs one command line. It reports true when the shell should exit.
func (s *shell) execute(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "q", "search":
		s.screen.SetSearchFocus(true)
		s.screen.SetQuery(arg)
	case "focus":
		s.screen.SetSearchFocus(arg != "off")
	case "pick":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("%w: pick <n>", errUsage)
		}
		results := s.screen.Snapshot().Results
		if n < 1 || n > len(results) {
			return false, fmt.Errorf("no result %d", n)
		}
		return false, s.screen.SelectResult(results[n-1].ID)
	case "mode":
		mode, err := domain.ParseTransportMode(arg)
		if err != nil {
			return false, err
		}
		return false, s.screen.SetMode(mode)
	case "move":
		c, err := parseLatLon(arg)
		if err != nil {
			return false, err
		}
		s.locator.Move(c)
		return false, s.screen.Recenter(ctx)
	case "go":
		c, err := parseLatLon(arg)
		if err != nil {
			return false, err
		}
		return false, s.screen.SetDestination(c, "")
	case "recenter":
		return false, s.screen.Recenter(ctx)
	case "clear":
		s.screen.ClearSearch()
	case "state":
		s.out.state(s.screen.Snapshot())
	case "help":
		s.out.help()
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func parseLatLon(arg string) (domain.Coordinate, error) {
	fields := strings.Fields(strings.ReplaceAll(arg, ",", " "))
	if len(fields) != 2 {
		return domain.Coordinate{}, fmt.Errorf("%w: <lat> <lon>", errUsage)
	}
	lat, err1 := strconv.ParseFloat(fields[0], 64)
	lon, err2 := strconv.ParseFloat(fields[1], 64)
	if err := errors.Join(err1, err2); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: <lat> <lon>", errUsage)
	}
	c := domain.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return domain.Coordinate{}, domain.ErrInvalidCoordinate
	}
	return c, nil
}

// printer renders screen states, skipping ones that look the same as the
// last one printed.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) state(st domain.ScreenState) {
	text := render(st)
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == p.last {
		return
	}
	p.last = text
	fmt.Fprint(p.w, text)
}

func (p *printer) help() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, `commands:
  q <text>          search places (3+ characters)
  pick <n>          choose result n as destination
  go <lat> <lon>    set a destination directly
  mode <m>          driving | cycling | walking
  move <lat> <lon>  move and recenter
  focus on|off      show or hide the results list
  recenter | clear | state | quit
`)
}

func render(st domain.ScreenState) string {
	var b strings.Builder

	switch {
	case st.Error != nil:
		fmt.Fprintf(&b, "! %s\n", st.Error.Message)
	case st.Loading:
		b.WriteString("locating...\n")
	}
	if st.Location != nil {
		fmt.Fprintf(&b, "@ %.5f, %.5f  [%s]\n", st.Location.Lat, st.Location.Lon, st.Mode)
	}

	if st.SearchFocused {
		switch {
		case st.Searching:
			fmt.Fprintf(&b, "  searching %q...\n", st.Query)
		case st.NoResults:
			b.WriteString("  no results\n")
		}
		for i, r := range st.Results {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, r.Title(), r.DistanceLabel())
			if sub := r.Subtitle(); sub != "" {
				fmt.Fprintf(&b, "     %s\n", sub)
			}
		}
	}

	if st.Destination != nil {
		name := st.Destination.Name
		if name == "" {
			name = fmt.Sprintf("%.5f, %.5f", st.Destination.Location.Lat, st.Destination.Location.Lon)
		}
		fmt.Fprintf(&b, "-> %s\n", name)
		switch {
		case st.ShowDuration:
			fmt.Fprintf(&b, "   %s by %s (%d route points)\n", st.DurationText, st.Mode, len(st.RoutePoints))
		case st.RoutePending:
			b.WriteString("   estimating...\n")
		}
	}
	return b.String()
}
