package quote

import "fmt"

// MockFetcher returns controllable fixed prices for development and testing.
// Symbols missing from a map are reported as unavailable.
type MockFetcher struct {
	Current  map[string]float64
	Previous map[string]float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	p, ok := m.Current[symbol]
	if !ok {
		return 0, fmt.Errorf("no current price for %s", symbol)
	}
	return p, nil
}

func (m *MockFetcher) FetchPreviousClose(symbol string) (float64, error) {
	p, ok := m.Previous[symbol]
	if !ok {
		return 0, fmt.Errorf("no previous close for %s", symbol)
	}
	return p, nil
}
