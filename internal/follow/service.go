package follow

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"StockSentry/internal/model"
	"StockSentry/internal/store"
)

// ErrNotFound is returned when a remove targets a symbol or point the follow
// list does not hold.
var ErrNotFound = errors.New("not found in follow list")

// Service owns the per-channel follow list: standing price alerts that are
// independent of any held position. The list is channel-scoped; the owner
// identity is only recorded into the storage key.
type Service struct {
	store   store.Store
	ownerID string
}

func NewService(st store.Store, ownerID string) *Service {
	return &Service{store: st, ownerID: ownerID}
}

func (s *Service) scope(channelID string) store.Scope {
	return store.Scope{OwnerID: s.ownerID, ChannelID: channelID}
}

// Get loads a channel's follow list, treating an absent or unparseable blob
// as empty. Store errors propagate.
func (s *Service) Get(channelID string) (*model.FollowList, error) {
	data, found, err := s.store.Load(store.KindFollowList, s.scope(channelID))
	if err != nil {
		return nil, fmt.Errorf("load follow list: %w", err)
	}
	if !found {
		return &model.FollowList{}, nil
	}
	var l model.FollowList
	if err := json.Unmarshal(data, &l); err != nil {
		log.Printf("[WARN] malformed follow list blob for channel %s, starting empty: %v", channelID, err)
		return &model.FollowList{}, nil
	}
	return &l, nil
}

func (s *Service) save(channelID string, l *model.FollowList) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal follow list: %w", err)
	}
	if err := s.store.Save(store.KindFollowList, s.scope(channelID), data); err != nil {
		return fmt.Errorf("save follow list: %w", err)
	}
	return nil
}

// Validate checks the follow point invariants enforced at creation:
// StopLoss < Entry < TakeProfit and a positive volume.
func Validate(p model.FollowPoint) error {
	if p.Entry <= 0 {
		return fmt.Errorf("entry price must be positive")
	}
	if p.TakeProfit <= p.Entry {
		return fmt.Errorf("take profit must be above entry")
	}
	if p.StopLoss >= p.Entry {
		return fmt.Errorf("stop loss must be below entry")
	}
	if p.Volume <= 0 {
		return fmt.Errorf("volume must be positive")
	}
	return nil
}

// AddPoint appends a follow point for a symbol, creating the entry on first
// use. A symbol can hold several independent points.
func (s *Service) AddPoint(channelID, symbol string, p model.FollowPoint) error {
	if err := Validate(p); err != nil {
		return err
	}
	l, err := s.Get(channelID)
	if err != nil {
		return err
	}
	if i := l.Find(symbol); i >= 0 {
		l.Stocks[i].Points = append(l.Stocks[i].Points, p)
	} else {
		l.Stocks = append(l.Stocks, model.FollowEntry{Symbol: symbol, Points: []model.FollowPoint{p}})
	}
	return s.save(channelID, l)
}

// RemovePoint removes the point with the given entry price from a symbol.
// Removing the last point removes the whole entry, never leaving an entry
// with an empty points list behind.
func (s *Service) RemovePoint(channelID, symbol string, entry float64) error {
	l, err := s.Get(channelID)
	if err != nil {
		return err
	}
	i := l.Find(symbol)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	points := l.Stocks[i].Points
	at := -1
	for j, p := range points {
		if p.Entry == entry {
			at = j
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("%w: %s entry %.2f", ErrNotFound, symbol, entry)
	}

	if len(points) == 1 {
		l.Stocks = append(l.Stocks[:i], l.Stocks[i+1:]...)
	} else {
		l.Stocks[i].Points = append(points[:at], points[at+1:]...)
	}
	return s.save(channelID, l)
}

// RemoveSymbol drops a symbol and all its points.
func (s *Service) RemoveSymbol(channelID, symbol string) error {
	l, err := s.Get(channelID)
	if err != nil {
		return err
	}
	i := l.Find(symbol)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	l.Stocks = append(l.Stocks[:i], l.Stocks[i+1:]...)
	return s.save(channelID, l)
}
