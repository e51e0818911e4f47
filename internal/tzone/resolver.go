// Package tzone resolves IANA zones for coordinates and converts local work
// windows into UTC instants.
package tzone

import (
	"time"

	t "github.com/planwx/planwx-core/internal/types"
	"github.com/ringsaturn/tzf"
	"go.uber.org/zap"
)

// Defaults applied when the schedule extractor could not determine a field.
const (
	DefaultStartLocal = "08:00"
	DefaultEndLocal   = "17:00"
)

// Finder maps a coordinate to an IANA zone name. Satisfied by tzf.F.
type Finder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type ResolverOption func(*Resolver)

type Resolver struct {
	finder Finder
	now    func() time.Time

	Logger *zap.SugaredLogger
}

func LoggerOption(logger *zap.SugaredLogger) ResolverOption {
	return func(r *Resolver) {
		r.Logger = logger
	}
}

// FinderOption overrides the coordinate lookup, for tests.
func FinderOption(finder Finder) ResolverOption {
	return func(r *Resolver) {
		r.finder = finder
	}
}

// NowOption overrides the clock, for tests.
func NowOption(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

func New(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop().Sugar()
	}
	if r.finder == nil {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			// Resolve degrades to the explicit zone or UTC.
			r.Logger.Warnf("Error initializing timezone finder, falling back to UTC: %v", err.Error())
		} else {
			r.finder = finder
		}
	}
	return r
}

// Resolve returns the zone for a coordinate, preferring the explicit zone
// when it names a loadable location. It never fails: any trouble resolves to
// the explicit zone if given, else UTC.
func (r *Resolver) Resolve(lat, lon float64, explicit string) string {
	if explicit != "" {
		if _, err := time.LoadLocation(explicit); err == nil {
			return explicit
		}
		r.Logger.Warnf("Ignoring unloadable timezone override %v", explicit)
	}
	if r.finder != nil {
		if zone := r.finder.GetTimezoneName(lon, lat); zone != "" {
			if _, err := time.LoadLocation(zone); err == nil {
				return zone
			}
		}
	}
	if explicit != "" {
		return explicit
	}
	return "UTC"
}

// LocalWindowToUTC interprets the schedule's date and wall-clock times in
// the resolved zone and converts both ends to UTC. Missing times default to
// the standard work day; a missing date means today in the resolved zone.
// A window whose UTC end precedes its start (possible across a DST
// transition) is passed through as-is; downstream summarization treats it as
// an empty window.
func (r *Resolver) LocalWindowToUTC(sched t.Schedule, lat, lon float64) (t.ResolvedWindow, error) {
	zone := r.Resolve(lat, lon, sched.TimezoneOverride)
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
		zone = "UTC"
	}

	startLocal := sched.StartLocal
	if startLocal == "" {
		startLocal = DefaultStartLocal
	}
	endLocal := sched.EndLocal
	if endLocal == "" {
		endLocal = DefaultEndLocal
	}
	date := sched.Date
	if date == "" {
		date = r.now().In(loc).Format("2006-01-02")
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startLocal, loc)
	if err != nil {
		return t.ResolvedWindow{}, t.InvalidInputf("invalid schedule start %q %q: %v", date, startLocal, err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endLocal, loc)
	if err != nil {
		return t.ResolvedWindow{}, t.InvalidInputf("invalid schedule end %q %q: %v", date, endLocal, err)
	}

	win := t.ResolvedWindow{
		Timezone:   zone,
		StartUTC:   start.UTC(),
		EndUTC:     end.UTC(),
		StartLocal: startLocal,
		EndLocal:   endLocal,
	}
	if win.EndUTC.Before(win.StartUTC) {
		r.Logger.Warnw("Resolved window ends before it starts",
			"timezone", zone, "start", win.StartUTC.String(), "end", win.EndUTC.String())
	}
	return win, nil
}

// LocalDates returns the calendar days the window touches in its own zone,
// start day first. Two entries when the window crosses midnight.
func LocalDates(win t.ResolvedWindow) []string {
	loc, err := time.LoadLocation(win.Timezone)
	if err != nil {
		loc = time.UTC
	}
	startDay := win.StartUTC.In(loc).Format("2006-01-02")
	endDay := win.EndUTC.In(loc).Format("2006-01-02")
	if startDay == endDay {
		return []string{startDay}
	}
	return []string{startDay, endDay}
}
