package restaurant

import (
	"fmt"
	"time"

	"github.com/fwojciec/concierge"
)

// Section is one menu category and its items in menu order.
type Section struct {
	Category concierge.Category
	Items    []concierge.MenuItem
}

// Dataset is the restaurant's static data.
type Dataset struct {
	Info   concierge.RestaurantInfo
	Hours  concierge.OperatingHours
	Menu   []Section
	Tables []concierge.Table
}

// Validate checks the dataset's invariants: positive prices and
// capacities, unique table ids, known statuses and categories.
func (d Dataset) Validate() error {
	seenCat := map[concierge.Category]bool{}
	for _, s := range d.Menu {
		if _, ok := concierge.ParseCategory(string(s.Category)); !ok {
			return fmt.Errorf("unknown category %q: %w", s.Category, concierge.ErrValidation)
		}
		if seenCat[s.Category] {
			return fmt.Errorf("duplicate category %q: %w", s.Category, concierge.ErrValidation)
		}
		seenCat[s.Category] = true
		for _, it := range s.Items {
			if it.Name == "" {
				return fmt.Errorf("unnamed item in %q: %w", s.Category, concierge.ErrValidation)
			}
			if it.Price <= 0 {
				return fmt.Errorf("item %q: price must be positive, got %d: %w", it.Name, it.Price, concierge.ErrValidation)
			}
		}
	}
	seenTable := map[int]bool{}
	for _, t := range d.Tables {
		if t.ID <= 0 {
			return fmt.Errorf("table id must be positive, got %d: %w", t.ID, concierge.ErrValidation)
		}
		if seenTable[t.ID] {
			return fmt.Errorf("duplicate table id %d: %w", t.ID, concierge.ErrValidation)
		}
		seenTable[t.ID] = true
		if t.Capacity <= 0 {
			return fmt.Errorf("table %d: capacity must be positive, got %d: %w", t.ID, t.Capacity, concierge.ErrValidation)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("table %d: unknown status %q: %w", t.ID, t.Status, concierge.ErrValidation)
		}
	}
	for day, h := range d.Hours {
		if h.Close < h.Open {
			return fmt.Errorf("%s: close %s before open %s: %w", day, h.Close, h.Open, concierge.ErrValidation)
		}
	}
	return nil
}

func (d Dataset) clone() Dataset {
	out := Dataset{
		Info:   d.Info,
		Hours:  make(concierge.OperatingHours, len(d.Hours)),
		Menu:   make([]Section, len(d.Menu)),
		Tables: append([]concierge.Table(nil), d.Tables...),
	}
	for k, v := range d.Hours {
		out.Hours[k] = v
	}
	for i, s := range d.Menu {
		out.Menu[i] = Section{Category: s.Category, Items: append([]concierge.MenuItem(nil), s.Items...)}
	}
	return out
}

func hm(h, m int) concierge.TimeOfDay {
	return concierge.TimeOfDay(h*3600 + m*60)
}

func item(name, description string, price int, vegetarian bool) concierge.MenuItem {
	return concierge.MenuItem{Name: name, Description: description, Price: price, Vegetarian: vegetarian}
}

// DefaultDataset returns the Spice Garden fixture.
func DefaultDataset() Dataset {
	weekday := concierge.Hours{Open: hm(11, 0), Close: hm(23, 0)}
	weekend := concierge.Hours{Open: hm(11, 0), Close: hm(23, 30)}
	return Dataset{
		Info: concierge.RestaurantInfo{
			Name:       "Spice Garden - Authentic Indian Cuisine",
			Address:    "123 Main Street, Connaught Place, New Delhi, India - 110001",
			Phone:      "+91-11-2345-6789",
			Email:      "info@spicegarden.com",
			Website:    "www.spicegarden.com",
			Cuisine:    "Indian",
			Rating:     4.5,
			PriceRange: "₹₹₹",
		},
		Hours: concierge.OperatingHours{
			time.Monday:    weekday,
			time.Tuesday:   weekday,
			time.Wednesday: weekday,
			time.Thursday:  weekday,
			time.Friday:    weekend,
			time.Saturday:  weekend,
			time.Sunday:    {Open: hm(12, 0), Close: hm(22, 0)},
		},
		Menu: []Section{
			{Category: concierge.CategoryAppetizers, Items: []concierge.MenuItem{
				item("Samosa", "Crispy pastry filled with spiced potatoes and peas", 120, true),
				item("Paneer Tikka", "Grilled cottage cheese with Indian spices", 180, true),
				item("Chicken 65", "Spicy deep-fried chicken with curry leaves", 220, false),
				item("Veg Spring Roll", "Crispy rolls with mixed vegetables", 140, true),
				item("Fish Pakora", "Spiced fish fritters", 200, false),
			}},
			{Category: concierge.CategorySoups, Items: []concierge.MenuItem{
				item("Tomato Soup", "Classic tomato soup with Indian spices", 100, true),
				item("Chicken Soup", "Hearty chicken soup with herbs", 150, false),
				item("Mulligatawny Soup", "Traditional Indian lentil soup", 120, true),
			}},
			{Category: concierge.CategoryMainCourse, Items: []concierge.MenuItem{
				item("Butter Chicken", "Creamy tomato-based curry with tender chicken", 350, false),
				item("Paneer Butter Masala", "Cottage cheese in rich tomato gravy", 280, true),
				item("Chicken Biryani", "Aromatic rice with tender chicken and spices", 320, false),
				item("Veg Biryani", "Fragrant rice with mixed vegetables", 250, true),
				item("Dal Makhani", "Creamy black lentils slow-cooked overnight", 180, true),
				item("Fish Curry", "Fresh fish in tangy coconut curry", 380, false),
				item("Palak Paneer", "Spinach curry with cottage cheese", 220, true),
				item("Chicken Tikka Masala", "Grilled chicken in spiced tomato sauce", 340, false),
			}},
			{Category: concierge.CategoryBreads, Items: []concierge.MenuItem{
				item("Naan", "Soft leavened bread", 30, true),
				item("Butter Naan", "Naan brushed with butter", 40, true),
				item("Roti", "Whole wheat flatbread", 25, true),
				item("Paratha", "Layered flatbread", 35, true),
			}},
			{Category: concierge.CategoryDesserts, Items: []concierge.MenuItem{
				item("Gulab Jamun", "Sweet milk dumplings in sugar syrup", 80, true),
				item("Rasmalai", "Soft cottage cheese patties in sweet milk", 90, true),
				item("Kheer", "Rice pudding with nuts and saffron", 70, true),
			}},
			{Category: concierge.CategoryBeverages, Items: []concierge.MenuItem{
				item("Masala Chai", "Spiced Indian tea", 40, true),
				item("Lassi", "Sweet yogurt drink", 60, true),
				item("Mango Lassi", "Mango-flavored yogurt drink", 70, true),
				item("Coca Cola", "Soft drink", 50, true),
			}},
		},
		Tables: []concierge.Table{
			{ID: 1, Capacity: 2, Location: "Window", Status: concierge.TableAvailable},
			{ID: 2, Capacity: 2, Location: "Window", Status: concierge.TableAvailable},
			{ID: 3, Capacity: 4, Location: "Center", Status: concierge.TableAvailable},
			{ID: 4, Capacity: 4, Location: "Center", Status: concierge.TableAvailable},
			{ID: 5, Capacity: 6, Location: "Garden", Status: concierge.TableAvailable},
			{ID: 6, Capacity: 6, Location: "Garden", Status: concierge.TableAvailable},
			{ID: 7, Capacity: 8, Location: "Private", Status: concierge.TableAvailable},
			{ID: 8, Capacity: 8, Location: "Private", Status: concierge.TableAvailable},
		},
	}
}
