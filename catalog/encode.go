package catalog

import (
	"strconv"
	"strings"

	"github.com/fwojciec/concierge"
)

type menuItemDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Vegetarian  bool   `json:"vegetarian"`
	Category    string `json:"category"`
}

type tableDTO struct {
	ID       int    `json:"id"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

type hoursDTO struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type infoDTO struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Website    string  `json:"website"`
	Cuisine    string  `json:"cuisine"`
	Rating     float64 `json:"rating"`
	PriceRange string  `json:"price_range"`
}

func menuItems(items []concierge.MenuItem) []menuItemDTO {
	out := make([]menuItemDTO, len(items))
	for i, it := range items {
		out[i] = menuItemDTO{
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Vegetarian:  it.Vegetarian,
			Category:    string(it.Category),
		}
	}
	return out
}

func table(t concierge.Table) tableDTO {
	return tableDTO{ID: t.ID, Capacity: t.Capacity, Location: t.Location, Status: string(t.Status)}
}

// tables is keyed by the decimal table id; encoding/json sorts the keys.
func tables(ts map[int]concierge.Table) map[string]tableDTO {
	out := make(map[string]tableDTO, len(ts))
	for id, t := range ts {
		out[strconv.Itoa(id)] = table(t)
	}
	return out
}

func hours(h concierge.OperatingHours) map[string]hoursDTO {
	out := make(map[string]hoursDTO, len(h))
	for day, w := range h {
		out[strings.ToLower(day.String())] = hoursDTO{Open: w.Open.String(), Close: w.Close.String()}
	}
	return out
}

func info(i concierge.RestaurantInfo) infoDTO {
	return infoDTO{
		Name:       i.Name,
		Address:    i.Address,
		Phone:      i.Phone,
		Email:      i.Email,
		Website:    i.Website,
		Cuisine:    i.Cuisine,
		Rating:     i.Rating,
		PriceRange: i.PriceRange,
	}
}
