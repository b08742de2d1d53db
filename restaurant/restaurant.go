// Package restaurant answers questions about one restaurant's menu, tables
// and opening hours.
package restaurant

import (
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/concierge"
)

// Store owns a dataset and answers queries over it. It is safe for
// concurrent use: queries share a read lock and BookTable is the only
// writer. Queries return copies.
type Store struct {
	mu   sync.RWMutex
	data Dataset
	now  func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithClock sets the clock used by IsOpenNow. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a [Store] over a copy of data.
func New(data Dataset, opts ...Option) *Store {
	s := &Store{data: data.clone(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Info returns the restaurant's details.
func (s *Store) Info() concierge.RestaurantInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Info
}

// OperatingHours returns a copy of the weekly opening hours.
func (s *Store) OperatingHours() concierge.OperatingHours {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(concierge.OperatingHours, len(s.data.Hours))
	for k, v := range s.data.Hours {
		out[k] = v
	}
	return out
}

// AllMenuItems flattens the menu in category order, then item order,
// annotating each item with its category.
func (s *Store) AllMenuItems() []concierge.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flatten(func(concierge.MenuItem) bool { return true })
}

// MenuByCategory returns the items of one category, matched
// case-insensitively. An unknown category yields an empty slice.
func (s *Store) MenuByCategory(category string) []concierge.MenuItem {
	c, ok := concierge.ParseCategory(category)
	if !ok {
		return []concierge.MenuItem{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []concierge.MenuItem{}
	for _, sec := range s.data.Menu {
		if sec.Category != c {
			continue
		}
		for _, it := range sec.Items {
			it.Category = sec.Category
			items = append(items, it)
		}
	}
	return items
}

// VegetarianItems returns every vegetarian item in menu order.
func (s *Store) VegetarianItems() []concierge.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flatten(func(it concierge.MenuItem) bool { return it.Vegetarian })
}

// NonVegetarianItems returns every non-vegetarian item in menu order.
func (s *Store) NonVegetarianItems() []concierge.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flatten(func(it concierge.MenuItem) bool { return !it.Vegetarian })
}

// flatten must be called with the read lock held.
func (s *Store) flatten(keep func(concierge.MenuItem) bool) []concierge.MenuItem {
	items := []concierge.MenuItem{}
	for _, sec := range s.data.Menu {
		for _, it := range sec.Items {
			it.Category = sec.Category
			if keep(it) {
				items = append(items, it)
			}
		}
	}
	return items
}

// Tables returns every table keyed by id.
func (s *Store) Tables() map[int]concierge.Table {
	return s.tables(func(concierge.Table) bool { return true })
}

// AvailableTables returns the tables whose status is available.
func (s *Store) AvailableTables() map[int]concierge.Table {
	return s.tables(func(t concierge.Table) bool { return t.Status == concierge.TableAvailable })
}

// TablesByCapacity returns tables seating at least minCapacity guests. A negative
// value is rejected with an InvalidArgument error.
func (s *Store) TablesByCapacity(minCapacity int) (map[int]concierge.Table, error) {
	if minCapacity < 0 {
		return nil, concierge.InvalidArgument("capacity", "must be a non-negative integer, got %d", minCapacity)
	}
	return s.tables(func(t concierge.Table) bool { return t.Capacity >= minCapacity }), nil
}

func (s *Store) tables(keep func(concierge.Table) bool) map[int]concierge.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[int]concierge.Table{}
	for _, t := range s.data.Tables {
		if keep(t) {
			out[t.ID] = t
		}
	}
	return out
}

// BookTable reserves an available table and returns its new state.
func (s *Store) BookTable(id int) (concierge.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.data.Tables {
		if t.ID != id {
			continue
		}
		if t.Status != concierge.TableAvailable {
			return concierge.Table{}, concierge.InvalidArgument("tableId", "table %d is %s", id, t.Status)
		}
		s.data.Tables[i].Status = concierge.TableReserved
		return s.data.Tables[i], nil
	}
	return concierge.Table{}, concierge.InvalidArgument("tableId", "no table with id %d", id)
}

// IsOpenNow reports whether the restaurant is open at the store's current time.
func (s *Store) IsOpenNow() bool {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsOpenAt(s.data.Hours, now)
}

// IsOpenAt reports whether t falls within the opening window of t's weekday.
// Windows are compared as same-day wall-clock times with both ends inclusive;
// hours crossing midnight are not supported. A weekday missing from hours
// is closed.
func IsOpenAt(hours concierge.OperatingHours, t time.Time) bool {
	h, ok := hours[t.Weekday()]
	if !ok {
		return false
	}
	now := concierge.Clock(t)
	return h.Open <= now && now <= h.Close
}

// Describe summarizes the store for logs.
func (s *Store) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sec := range s.data.Menu {
		n += len(sec.Items)
	}
	return fmt.Sprintf("%s: %d categories, %d items, %d tables", s.data.Info.Name, len(s.data.Menu), n, len(s.data.Tables))
}
