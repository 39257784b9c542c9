package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockSentry/internal/market"
)

// priceScale converts the feed's raw close values (thousand-dong units) into
// the unit used everywhere else in this codebase. Applied here and only here.
const priceScale = 1000

// TCBSFetcher implements Fetcher against the TCBS stock-insight bars API.
type TCBSFetcher struct {
	BaseURL  string
	Calendar *market.Calendar
	Client   *http.Client
}

// NewTCBSFetcher creates a fetcher with optional proxy support. The calendar
// anchors bar lookups to the latest market session.
func NewTCBSFetcher(baseURL string, cal *market.Calendar, proxyURL string) *TCBSFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TCBSFetcher{
		BaseURL:  baseURL,
		Calendar: cal,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *TCBSFetcher) Name() string { return "tcbs" }

// FetchCurrentPrice returns the close of the most recent 1-minute bar at or
// before the latest market time.
func (f *TCBSFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	to := f.Calendar.LatestMarketTime().Unix()
	return f.fetchBarClose(symbol, to)
}

// FetchPreviousClose returns the close of the bar one trading day before the
// latest market time. The feed resolves the timestamp to the last bar at or
// before it, so weekends need no special casing here.
func (f *TCBSFetcher) FetchPreviousClose(symbol string) (float64, error) {
	to := f.Calendar.LatestMarketTime().Unix() - 24*60*60
	return f.fetchBarClose(symbol, to)
}

func (f *TCBSFetcher) fetchBarClose(symbol string, to int64) (float64, error) {
	endpoint := fmt.Sprintf("%s/bars?ticker=%s&type=stock&resolution=1&to=%d&countBack=1",
		f.BaseURL, url.QueryEscape(symbol), to)
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch bar for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("fetch bar for %s: status %d, body: %s", symbol, resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Close float64 `json:"close"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode bar for %s: %w", symbol, err)
	}
	if len(result.Data) == 0 {
		return 0, fmt.Errorf("no bar data for %s", symbol)
	}
	return result.Data[0].Close / priceScale, nil
}
