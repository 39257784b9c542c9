package quote

// Fetcher supplies normalized prices for a ticker. Any returned error means
// the price is unavailable right now; callers skip the symbol for the current
// tick and must never treat it as fatal.
type Fetcher interface {
	FetchCurrentPrice(symbol string) (float64, error)
	FetchPreviousClose(symbol string) (float64, error)
	Name() string
}
