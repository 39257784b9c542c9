package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"StockSentry/internal/model"
	"StockSentry/internal/quote"
	"StockSentry/internal/store"
	"StockSentry/internal/valuation"
)

// ErrNotFound is returned when a remove targets a symbol the portfolio does
// not hold. The command layer turns it into a user-facing message.
var ErrNotFound = errors.New("symbol not found in portfolio")

// Service owns portfolio reads, mutations and valuation. Mutations are
// read-modify-write without locking; concurrent writers are last-write-wins.
type Service struct {
	store   store.Store
	fetcher quote.Fetcher
}

func NewService(st store.Store, fetcher quote.Fetcher) *Service {
	return &Service{store: st, fetcher: fetcher}
}

// Get loads the portfolio for a scope, lazily treating an absent or
// unparseable blob as an empty portfolio. Store errors propagate so explicit
// user actions can report failure.
func (s *Service) Get(scope store.Scope) (*model.Portfolio, error) {
	empty := &model.Portfolio{UserID: scope.OwnerID, ChannelID: scope.ChannelID}
	data, found, err := s.store.Load(store.KindPortfolio, scope)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if !found {
		return empty, nil
	}
	var p model.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[WARN] malformed portfolio blob for channel %s, starting empty: %v", scope.ChannelID, err)
		return empty, nil
	}
	return &p, nil
}

func (s *Service) save(scope store.Scope, p *model.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := s.store.Save(store.KindPortfolio, scope, data); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// AddStock adds a holding. Re-adding a held symbol merges into the existing
// position with a weighted average cost; no duplicate entries.
func (s *Service) AddStock(scope store.Scope, symbol string, quantity, price float64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	p, err := s.Get(scope)
	if err != nil {
		return err
	}
	if i := p.Find(symbol); i >= 0 {
		pos := &p.Stocks[i]
		oldValue := pos.Quantity * pos.AvgCost
		newValue := quantity * price
		total := pos.Quantity + quantity
		pos.AvgCost = (oldValue + newValue) / total
		pos.Quantity = total
	} else {
		p.Stocks = append(p.Stocks, model.Position{
			Symbol:     symbol,
			Quantity:   quantity,
			AvgCost:    price,
			AcquiredAt: time.Now(),
		})
	}
	return s.save(scope, p)
}

// RemoveStock drops a holding entirely. ErrNotFound if the symbol is absent.
func (s *Service) RemoveStock(scope store.Scope, symbol string) error {
	p, err := s.Get(scope)
	if err != nil {
		return err
	}
	i := p.Find(symbol)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	p.Stocks = append(p.Stocks[:i], p.Stocks[i+1:]...)
	return s.save(scope, p)
}

// Details values every position at current prices. Positions whose current
// price is unavailable are dropped from the snapshots and from every
// aggregate for this call; totals silently shrink rather than zero-fill.
func (s *Service) Details(scope store.Scope) (model.Summary, error) {
	p, err := s.Get(scope)
	if err != nil {
		return model.Summary{}, err
	}

	var snaps []model.Snapshot
	for _, pos := range p.Stocks {
		current, err := s.fetcher.FetchCurrentPrice(pos.Symbol)
		if err != nil {
			log.Printf("[WARN] price unavailable for %s, skipping this tick: %v", pos.Symbol, err)
			continue
		}
		previous, err := s.fetcher.FetchPreviousClose(pos.Symbol)
		if err != nil {
			log.Printf("[WARN] previous close unavailable for %s: %v", pos.Symbol, err)
			previous = 0
		}
		snaps = append(snaps, valuation.NewSnapshot(pos, current, previous))
	}
	return valuation.Summarize(snaps), nil
}
