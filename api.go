package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// trailingWindowDays is the default chart window applied when the filter
// state carries no date range.
const trailingWindowDays = 7

// API is the HTTP transport to the SorsAI console backend. It owns parameter
// derivation from FilterState and delegates payload validation to the
// decoders in schema.go; it holds no view state of its own.
type API struct {
	consoleURL string
	apiKey     string
	client     *http.Client
	debug      *DebugLogger
	now        func() time.Time
}

// NewAPI creates a console transport.
func NewAPI(consoleURL, apiKey string, timeout time.Duration, debug *DebugLogger) *API {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &API{
		consoleURL: consoleURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
		debug:      debug,
		now:        time.Now,
	}
}

// Chart fetches the demand-vs-prediction series for the given scope.
// When the filter carries no date range, a trailing 7-day window ending today
// is used; no other parameters are invented.
func (a *API) Chart(ctx context.Context, f FilterState) ([]SeriesPoint, error) {
	start, end := a.chartWindow(f)

	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if f.SKU != "" {
		q.Set("sku", f.SKU)
	}
	if f.Store != "" {
		q.Set("store", f.Store)
	}

	body, err := a.get(ctx, "chart", "/api/dashboard/chart", q)
	if err != nil {
		return nil, err
	}
	return decodeChart(body, f.SKU, f.Store)
}

// Metrics fetches the aggregate KPI tiles for the given scope.
func (a *API) Metrics(ctx context.Context, f FilterState) ([]Metric, error) {
	start, end := a.chartWindow(f)

	q := url.Values{}
	q.Set("start_date", start)
	q.Set("end_date", end)
	if f.SKU != "" {
		q.Set("sku", f.SKU)
	}
	if f.Store != "" {
		q.Set("store", f.Store)
	}

	body, err := a.get(ctx, "metrics", "/api/dashboard/metrics", q)
	if err != nil {
		return nil, err
	}
	return decodeMetrics(body)
}

// StoryCards fetches narrative story cards for the given scope. Each enabled
// signal toggle is sent as one repeated "signals" parameter.
func (a *API) StoryCards(ctx context.Context, f FilterState) ([]Card, error) {
	start, end := a.chartWindow(f)

	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if f.SKU != "" {
		q.Set("sku", f.SKU)
	}
	if f.Store != "" {
		q.Set("store", f.Store)
	}
	for _, sig := range f.Signals() {
		q.Add("signals", sig)
	}

	body, err := a.get(ctx, "storycards", "/api/dashboard/storycards", q)
	if err != nil {
		return nil, err
	}
	return decodeCards(body)
}

// ExplainSingle fetches the explanation for one forecast point.
func (a *API) ExplainSingle(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
	if ec.SKUID == "" || ec.StoreID == "" || ec.ForecastDate == "" {
		return ExplanationRecord{}, ErrMissingContext
	}

	body, err := a.post(ctx, "explain", "/api/dashboard/explain/single", ec)
	if err != nil {
		return ExplanationRecord{}, err
	}
	return decodeExplanation(body, ec)
}

// ExplainBatch fetches explanations for several forecast points in one call.
func (a *API) ExplainBatch(ctx context.Context, contexts []ExplainContext) ([]ExplanationRecord, error) {
	if len(contexts) == 0 {
		return nil, nil
	}
	for _, ec := range contexts {
		if ec.SKUID == "" || ec.StoreID == "" || ec.ForecastDate == "" {
			return nil, ErrMissingContext
		}
	}

	body, err := a.post(ctx, "explain batch", "/api/dashboard/explanations", contexts)
	if err != nil {
		return nil, err
	}
	return decodeExplanationBatch(body)
}

// copilotRequest is the copilot endpoint body: the question plus the filter
// context it should be answered within.
type copilotRequest struct {
	Query   string      `json:"query"`
	Filters FilterState `json:"filters"`
}

// Ask sends one question to the console copilot.
func (a *API) Ask(ctx context.Context, query string, f FilterState) (Answer, error) {
	body, err := a.post(ctx, "copilot", "/api/dashboard/copilot", copilotRequest{Query: query, Filters: f})
	if err != nil {
		return Answer{}, err
	}
	return decodeAnswer(body)
}

// ConfidenceHistory fetches the confidence trend for one sku/store scope.
func (a *API) ConfidenceHistory(ctx context.Context, sku, store string) (ConfidenceHistory, error) {
	q := url.Values{}
	q.Set("sku", sku)
	q.Set("store", store)

	body, err := a.get(ctx, "confidence history", "/api/dashboard/confidence-history", q)
	if err != nil {
		return ConfidenceHistory{}, err
	}
	return decodeConfidenceHistory(body)
}

// Health probes console reachability.
func (a *API) Health(ctx context.Context) error {
	_, err := a.get(ctx, "health", "/health", nil)
	return err
}

// chartWindow resolves the effective date range for the current filters.
func (a *API) chartWindow(f FilterState) (start, end string) {
	start, end = f.StartDate, f.EndDate
	if end == "" {
		end = a.now().Format("2006-01-02")
	}
	if start == "" {
		start = a.now().AddDate(0, 0, -trailingWindowDays).Format("2006-01-02")
	}
	return start, end
}

func (a *API) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	u := a.consoleURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RequestError{Operation: op, Err: err}
	}
	a.setHeaders(req)

	a.debug.LogRequest(http.MethodGet, u, nil)
	return a.do(op, req)
}

func (a *API) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Operation: op, Err: err}
	}

	u := a.consoleURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Operation: op, Err: err}
	}
	a.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	a.debug.LogRequest(http.MethodPost, u, body)
	return a.do(op, req)
}

func (a *API) do(op string, req *http.Request) ([]byte, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		a.debug.LogError(op, err)
		return nil, &RequestError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.debug.LogError(op, err)
		return nil, &RequestError{Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	a.debug.LogResponse(resp.StatusCode, resp.Status, body)

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return body, nil
}

func (a *API) setHeaders(req *http.Request) {
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

