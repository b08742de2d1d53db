package concierge

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed menu sections.
type Category string

const (
	CategoryAppetizers Category = "appetizers"
	CategorySoups      Category = "soups"
	CategoryMainCourse Category = "main_course"
	CategoryBreads     Category = "breads"
	CategoryDesserts   Category = "desserts"
	CategoryBeverages  Category = "beverages"
)

// Categories lists every category in menu order.
func Categories() []Category {
	return []Category{
		CategoryAppetizers,
		CategorySoups,
		CategoryMainCourse,
		CategoryBreads,
		CategoryDesserts,
		CategoryBeverages,
	}
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// MenuItem is a dish. Category is filled in when items are flattened out of
// their menu section.
type MenuItem struct {
	Name        string
	Description string
	Price       int
	Vegetarian  bool
	Category    Category
}

// TableStatus is the booking state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is a known status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	default:
		return false
	}
}

// Table is a bookable table.
type Table struct {
	ID       int
	Capacity int
	Location string
	Status   TableStatus
}

// TimeOfDay is a wall-clock time as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" in 24-hour notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, ErrValidation)
	}
	return Clock(t), nil
}

// Clock returns the wall-clock time of t.
func Clock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/3600, int(t)%3600/60)
}

// Hours is the opening window for one day. Close is on the same day as Open.
type Hours struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// OperatingHours maps each weekday to its opening window.
type OperatingHours map[time.Weekday]Hours

// ParseWeekday matches a lowercase or capitalized English weekday name.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return d, true
		}
	}
	return 0, false
}

// RestaurantInfo describes the restaurant itself.
type RestaurantInfo struct {
	Name       string
	Address    string
	Phone      string
	Email      string
	Website    string
	Cuisine    string
	Rating     float64
	PriceRange string
}
