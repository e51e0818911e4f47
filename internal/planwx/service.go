package planwx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/planwx/planwx-core/internal/cache"
	"github.com/planwx/planwx-core/internal/normalize"
	om "github.com/planwx/planwx-core/internal/openmeteo"
	tio "github.com/planwx/planwx-core/internal/tomorrowio"
	"github.com/planwx/planwx-core/internal/tzone"
	t "github.com/planwx/planwx-core/internal/types"
	"github.com/planwx/planwx-core/internal/window"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const units = "metric"

// WindowReport pairs a resolved work window with its weather summary.
type WindowReport struct {
	Window  t.ResolvedWindow `json:"window"`
	Summary t.WindowSummary  `json:"summary"`
}

// Advice is the composed output of the collaborator pipeline.
type Advice struct {
	Schedule       t.Schedule       `json:"schedule"`
	Window         t.ResolvedWindow `json:"window"`
	Summary        t.WindowSummary  `json:"summary"`
	Recommendation string           `json:"recommendation,omitempty"`
}

type ServiceOption func(*Service)

// Service is the caller-facing core: it acquires weather data through the
// primary client (cache, coalescing, retry, stale fallback), falls back to
// the secondary provider on exhaustion, and reduces forecast windows.
type Service struct {
	tio   *tio.Client
	om    *om.Client
	cache *cache.Service
	tz    *tzone.Resolver

	extractor   ScheduleExtractor
	recommender RecommendationGenerator
	rules       RuleEvaluator

	Logger *zap.SugaredLogger
}

func TomorrowOption(c *tio.Client) ServiceOption {
	return func(s *Service) {
		s.tio = c
	}
}

func OpenMeteoOption(c *om.Client) ServiceOption {
	return func(s *Service) {
		s.om = c
	}
}

func CacheOption(cs *cache.Service) ServiceOption {
	return func(s *Service) {
		s.cache = cs
	}
}

func ResolverOption(r *tzone.Resolver) ServiceOption {
	return func(s *Service) {
		s.tz = r
	}
}

func LoggerOption(logger *zap.SugaredLogger) ServiceOption {
	return func(s *Service) {
		s.Logger = logger
	}
}

func ExtractorOption(e ScheduleExtractor) ServiceOption {
	return func(s *Service) {
		s.extractor = e
	}
}

func RecommenderOption(r RecommendationGenerator) ServiceOption {
	return func(s *Service) {
		s.recommender = r
	}
}

func RulesOption(r RuleEvaluator) ServiceOption {
	return func(s *Service) {
		s.rules = r
	}
}

// New wires the service from config. Options override any piece, which is
// how tests swap in fakes; nothing here lives in package-level state.
func New(cfg Config, opts ...ServiceOption) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.Logger == nil {
		baseLogger, _ := zap.NewProduction()
		s.Logger = baseLogger.Sugar()
	}

	if s.cache == nil {
		var store cache.Store
		if cfg.RedisAddress != "" {
			rc := redis.NewClient(&redis.Options{
				Addr: cfg.RedisAddress,
			})
			store = cache.NewRedisStore(rc, s.Logger)
		} else {
			store = cache.NewMemoryStore()
		}
		s.cache = cache.New(cache.StoreOption(store))
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout}

	if s.tio == nil {
		s.tio = tio.New(
			tio.ApiKeyOption(cfg.TomorrowApiKey),
			tio.BaseUrlOption(cfg.TomorrowBaseUrl),
			tio.CacheOption(s.cache),
			tio.LoggerOption(s.Logger),
			tio.MaxRetriesOption(cfg.MaxRetries),
			tio.BaseBackoffOption(cfg.BaseBackoff),
			tio.TTLOption(cfg.CacheTTL),
			tio.HttpClientOption(hc),
		)
	}

	if s.om == nil {
		s.om = om.New(
			om.BaseUrlOption(cfg.OpenMeteoUrl),
			om.LoggerOption(s.Logger),
			om.HttpClientOption(hc),
		)
	}

	if s.tz == nil {
		s.tz = tzone.New(tzone.LoggerOption(s.Logger))
	}

	return s
}

// CurrentConditions returns the canonical observation for a coordinate.
// Primary first; after the primary path is exhausted (retries and stale
// cache included) the secondary provider is queried, its result run through
// the shared primary-shaped normalization.
func (s *Service) CurrentConditions(ctx context.Context, coords t.Coordinates) (*t.Observation, error) {
	if !coords.Valid() {
		return nil, t.InvalidInputf("coordinates out of range: (%v, %v)", coords.Latitude, coords.Longitude)
	}

	rt, err := s.tio.Realtime(ctx, coords, units)
	if err == nil {
		return normalize.FromTomorrowRealtime(rt), nil
	}
	s.Logger.Warnw("Primary realtime path exhausted, querying secondary provider",
		"lat", coords.Latitude, "lon", coords.Longitude, "error", err.Error())

	cur, omErr := s.om.Current(ctx, coords)
	if omErr != nil {
		s.Logger.Errorw("Secondary realtime fetch failed",
			"lat", coords.Latitude, "lon", coords.Longitude, "error", omErr.Error())
		return nil, fmt.Errorf("%w: primary: %v, secondary: %v", t.ErrAllProvidersExhausted, err, omErr)
	}

	obs := normalize.FromOpenMeteoCurrent(cur)
	obs.Coordinates = coords
	// Round-trip through the primary shape so every consumer sees the same
	// normalization regardless of which provider answered. The secondary's
	// code vocabulary is unknown to the primary lookup, so its text is
	// carried across.
	shared := normalize.FromTomorrowRealtime(normalize.ToTomorrowRealtime(obs))
	if shared.WeatherText == normalize.UnknownText && obs.WeatherText != "" {
		shared.WeatherText = obs.WeatherText
	}
	return shared, nil
}

// WindowSummary resolves the schedule's local window to UTC and summarizes
// the hourly forecast inside it.
func (s *Service) WindowSummary(ctx context.Context, sched t.Schedule, coords t.Coordinates) (*WindowReport, error) {
	if !coords.Valid() {
		return nil, t.InvalidInputf("coordinates out of range: (%v, %v)", coords.Latitude, coords.Longitude)
	}

	win, err := s.tz.LocalWindowToUTC(sched, coords.Latitude, coords.Longitude)
	if err != nil {
		return nil, err
	}

	samples, err := s.windowSamples(ctx, coords, win)
	if err != nil {
		return nil, err
	}

	startISO := win.StartUTC.Format(t.TimeLayoutUTC)
	endISO := win.EndUTC.Format(t.TimeLayoutUTC)
	return &WindowReport{
		Window:  win,
		Summary: window.Summarize(samples, startISO, endISO),
	}, nil
}

// windowSamples fetches canonical hourly samples covering the window:
// primary forecast first, then the secondary per-day fallback.
func (s *Service) windowSamples(ctx context.Context, coords t.Coordinates, win t.ResolvedWindow) ([]t.HourlySample, error) {
	fc, err := s.tio.ForecastHourly(ctx, coords, units, win.StartUTC, win.EndUTC)
	if err == nil {
		return normalize.FromTomorrowHourly(fc.Timelines.Hourly), nil
	}
	s.Logger.Warnw("Primary forecast path exhausted, querying secondary provider",
		"lat", coords.Latitude, "lon", coords.Longitude, "error", err.Error())

	samples, omErr := s.secondaryWindowSamples(ctx, coords, win)
	if omErr != nil {
		s.Logger.Errorw("Secondary forecast fetch failed",
			"lat", coords.Latitude, "lon", coords.Longitude, "error", omErr.Error())
		return nil, fmt.Errorf("%w: primary: %v, secondary: %v", t.ErrAllProvidersExhausted, err, omErr)
	}
	return samples, nil
}

// secondaryWindowSamples queries the secondary hourly endpoint for the
// window's start day and end day in its local zone, tolerating windows that
// cross midnight, and merges the mapped rows.
func (s *Service) secondaryWindowSamples(ctx context.Context, coords t.Coordinates, win t.ResolvedWindow) ([]t.HourlySample, error) {
	loc, err := time.LoadLocation(win.Timezone)
	if err != nil {
		loc = time.UTC
	}

	dates := tzone.LocalDates(win)
	daily := make([][]t.HourlySample, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			resp, err := s.om.Hourly(gctx, coords, date, win.Timezone)
			if err != nil {
				return err
			}
			daily[i] = normalize.FromOpenMeteoHourly(resp.Hourly, loc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var samples []t.HourlySample
	for _, day := range daily {
		samples = append(samples, day...)
	}
	return samples, nil
}

// Advise runs the full collaborator pipeline: free text to schedule,
// schedule to window summary, summary to recommendation text.
func (s *Service) Advise(ctx context.Context, freeText, defaultActivity string, coords t.Coordinates) (*Advice, error) {
	if s.extractor == nil {
		return nil, &t.ConfigurationError{Msg: "no schedule extractor configured"}
	}

	sched, err := s.extractor.Extract(ctx, freeText, defaultActivity)
	if err != nil {
		s.Logger.Warnw("Schedule extraction failed, using defaults",
			"activity", defaultActivity, "error", err.Error())
		sched = t.Schedule{Activity: defaultActivity}
	}
	if sched.Activity == "" {
		sched.Activity = defaultActivity
	}

	report, err := s.WindowSummary(ctx, sched, coords)
	if err != nil {
		return nil, err
	}

	advice := &Advice{
		Schedule: sched,
		Window:   report.Window,
		Summary:  report.Summary,
	}
	if s.recommender != nil {
		text, err := s.recommender.Recommend(ctx, coords, sched, report.Summary)
		if err != nil {
			s.Logger.Warnw("Recommendation generation failed",
				"activity", sched.Activity, "error", err.Error())
		} else {
			advice.Recommendation = text
		}
	}
	return advice, nil
}

// CurrentAdvisories evaluates threshold rules against current conditions.
func (s *Service) CurrentAdvisories(ctx context.Context, coords t.Coordinates) ([]string, error) {
	if s.rules == nil {
		return nil, &t.ConfigurationError{Msg: "no rule evaluator configured"}
	}
	obs, err := s.CurrentConditions(ctx, coords)
	if err != nil {
		return nil, err
	}
	return s.rules.Evaluate(*obs), nil
}
