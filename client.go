package lens

import (
	"context"
	"fmt"
)

// Client is the dashboard orchestrator. It owns the filter store, the four
// remote resources, the explanation cache, the assistant session and the
// action dispatcher, and wires them together: filter replacement re-evaluates
// every resource, copilot actions flow through the dispatcher, and
// explanation lookups from any surface share one cache.
type Client struct {
	config     Config
	debug      *DebugLogger
	api        *API
	filters    *FilterStore
	chart      *Resource[[]SeriesPoint]
	metrics    *Resource[[]Metric]
	cards      *Resource[[]Card]
	cache      *ExplanationCache
	session    *Session
	dispatcher *ActionDispatcher
}

// New creates a Lens client. With an empty ConsoleURL the client runs
// offline: every resource serves its documented fallback and the assistant
// answers through the local tiers only.
func New(cfg Config, handlers ActionHandlers) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	c := &Client{
		config:  cfg,
		debug:   debug,
		filters: NewFilterStore(DefaultFilters()),
	}

	if !cfg.IsOffline() {
		c.api = NewAPI(cfg.ConsoleURL, cfg.APIKey, cfg.RequestTimeout, debug)
	}

	c.chart = NewResource("chart", c.filters, c.fetchChart, FallbackChartSeries, debug)
	c.metrics = NewResource("metrics", c.filters, c.fetchMetrics, FallbackMetrics, debug)
	c.cards = NewResource("storycards", c.filters, c.fetchCards, FallbackCards, debug)

	c.cache = NewExplanationCache(c.fetchExplanation, debug)

	var ask AskFunc
	if c.api != nil {
		ask = func(ctx context.Context, question string, f FilterState) (Answer, error) {
			return c.api.Ask(ctx, question, f)
		}
	}
	c.session = NewSession(ask, cfg.Responder, debug)

	// The detail handler is wrapped so any surface asking for a forecast
	// detail warms the shared cache before the host renders it.
	host := handlers.ShowForecastDetail
	handlers.ShowForecastDetail = func(ec ExplainContext) error {
		record, err := c.cache.Explain(context.Background(), ec)
		if err != nil {
			return err
		}
		if host != nil {
			return host(ec)
		}
		c.debug.Log("forecast detail ready for %s/%s on %s (%s)",
			record.SKUID, record.StoreID, record.ForecastDate, record.ExplanationType)
		return nil
	}
	c.dispatcher = NewActionDispatcher(handlers, debug)

	return c, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.debug.Close()
}

// Filters returns the current filter state.
func (c *Client) Filters() FilterState {
	return c.filters.State()
}

// FilterEpoch returns the current filter epoch.
func (c *Client) FilterEpoch() uint64 {
	return c.filters.Epoch()
}

// SetFilters replaces the filter state as a whole, advancing the epoch, and
// re-evaluates every resource for the new state. Story cards are reset
// first: they are ephemeral and never carried across filter changes.
func (c *Client) SetFilters(ctx context.Context, next FilterState) {
	c.cards.Reset()
	c.filters.Replace(next)
	c.RefreshAll(ctx)
}

// RefreshAll refreshes every resource for the current epoch. Safe to call
// repeatedly: each resource issues at most one request per epoch.
func (c *Client) RefreshAll(ctx context.Context) {
	c.chart.Refresh(ctx)
	c.metrics.Refresh(ctx)
	c.cards.Refresh(ctx)
}

// Chart returns the chart resource snapshot.
func (c *Client) Chart() Snapshot[[]SeriesPoint] {
	return c.chart.Snapshot()
}

// Metrics returns the metrics resource snapshot.
func (c *Client) Metrics() Snapshot[[]Metric] {
	return c.metrics.Snapshot()
}

// StoryCards returns the story-cards resource snapshot.
func (c *Client) StoryCards() Snapshot[[]Card] {
	return c.cards.Snapshot()
}

// RefreshChart refreshes only the chart resource.
func (c *Client) RefreshChart(ctx context.Context) Snapshot[[]SeriesPoint] {
	return c.chart.Refresh(ctx)
}

// RefreshMetrics refreshes only the metrics resource.
func (c *Client) RefreshMetrics(ctx context.Context) Snapshot[[]Metric] {
	return c.metrics.Refresh(ctx)
}

// RefreshStoryCards refreshes only the story-cards resource.
func (c *Client) RefreshStoryCards(ctx context.Context) Snapshot[[]Card] {
	return c.cards.Refresh(ctx)
}

// Explain returns the explanation for one forecast point, fetching it at
// most once per context for the lifetime of the session.
func (c *Client) Explain(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
	return c.cache.Explain(ctx, ec)
}

// InvalidateExplanation forces a re-fetch on the next Explain for the
// context. This is the explicit retry path for failed explanations.
func (c *Client) InvalidateExplanation(ec ExplainContext) {
	c.cache.Invalidate(ec)
}

// WarmExplanations batch-fetches explanations and resolves them into the
// cache. Returns the number of records cached.
func (c *Client) WarmExplanations(ctx context.Context, contexts []ExplainContext) (int, error) {
	if c.api == nil {
		return 0, ErrOffline
	}
	records, err := c.api.ExplainBatch(ctx, contexts)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		c.cache.Put(record)
	}
	return len(records), nil
}

// Ask sends one question to the assistant within the current filter scope.
func (c *Client) Ask(ctx context.Context, question string) (ChatMessage, error) {
	return c.session.Send(ctx, question, c.filters.State())
}

// Dispatch routes an action to its bound effect. It never fails; effect
// errors are logged on the diagnostic channel.
func (c *Client) Dispatch(action Action) {
	c.dispatcher.Dispatch(action)
}

// Invoke dispatches the action carried by a suggestion. Invoking a
// suggestion is informational to the session: it alters no chat content.
func (c *Client) Invoke(s ActionSuggestion) {
	c.dispatcher.Dispatch(s.Action)
}

// Session exposes the assistant conversation.
func (c *Client) Session() *Session {
	return c.session
}

// Explanations exposes the shared explanation cache.
func (c *Client) Explanations() *ExplanationCache {
	return c.cache
}

// ConfidenceHistory fetches the confidence trend for the current sku/store
// scope.
func (c *Client) ConfidenceHistory(ctx context.Context) (ConfidenceHistory, error) {
	if c.api == nil {
		return ConfidenceHistory{}, ErrOffline
	}
	f := c.filters.State()
	return c.api.ConfidenceHistory(ctx, f.SKU, f.Store)
}

// Health probes console reachability and summarizes degraded resources.
// A degraded resource is never fatal: it only affects its own view.
func (c *Client) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true}

	if c.api == nil {
		status.Healthy = false
		status.Error = ErrOffline.Error()
	} else if err := c.api.Health(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	} else {
		status.ConsoleReachable = true
	}

	if c.chart.Degraded() {
		status.DegradedResources = append(status.DegradedResources, c.chart.Name())
	}
	if c.metrics.Degraded() {
		status.DegradedResources = append(status.DegradedResources, c.metrics.Name())
	}
	if c.cards.Degraded() {
		status.DegradedResources = append(status.DegradedResources, c.cards.Name())
	}

	return status
}

func (c *Client) fetchChart(ctx context.Context, f FilterState) ([]SeriesPoint, error) {
	if c.api == nil {
		return nil, ErrOffline
	}
	return c.api.Chart(ctx, f)
}

func (c *Client) fetchMetrics(ctx context.Context, f FilterState) ([]Metric, error) {
	if c.api == nil {
		return nil, ErrOffline
	}
	return c.api.Metrics(ctx, f)
}

func (c *Client) fetchCards(ctx context.Context, f FilterState) ([]Card, error) {
	if c.api == nil {
		return nil, ErrOffline
	}
	return c.api.StoryCards(ctx, f)
}

func (c *Client) fetchExplanation(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
	if c.api == nil {
		return ExplanationRecord{}, ErrOffline
	}
	return c.api.ExplainSingle(ctx, ec)
}
