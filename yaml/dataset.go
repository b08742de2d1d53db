package yaml

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/restaurant"
	"gopkg.in/yaml.v3"
)

type datasetDTO struct {
	Info   infoDTO             `yaml:"info"`
	Hours  map[string]hoursDTO `yaml:"hours"`
	Menu   []sectionDTO        `yaml:"menu"`
	Tables []tableDTO          `yaml:"tables"`
}

type infoDTO struct {
	Name       string  `yaml:"name"`
	Address    string  `yaml:"address"`
	Phone      string  `yaml:"phone"`
	Email      string  `yaml:"email"`
	Website    string  `yaml:"website"`
	Cuisine    string  `yaml:"cuisine"`
	Rating     float64 `yaml:"rating"`
	PriceRange string  `yaml:"price_range"`
}

type hoursDTO struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type sectionDTO struct {
	Category string    `yaml:"category"`
	Items    []itemDTO `yaml:"items"`
}

type itemDTO struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       int    `yaml:"price"`
	Vegetarian  bool   `yaml:"vegetarian"`
}

type tableDTO struct {
	ID       int    `yaml:"id"`
	Capacity int    `yaml:"capacity"`
	Location string `yaml:"location"`
	Status   string `yaml:"status"`
}

// LoadDataset reads a restaurant dataset file.
func LoadDataset(path string) (restaurant.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return restaurant.Dataset{}, fmt.Errorf("yaml: read dataset: %w", err)
	}
	d, err := DecodeDataset(bytes.NewReader(data))
	if err != nil {
		return restaurant.Dataset{}, fmt.Errorf("yaml: %s: %w", path, err)
	}
	return d, nil
}

// DecodeDataset decodes and validates a dataset document. Menu sections keep
// their document order. Table status defaults to available.
func DecodeDataset(r io.Reader) (restaurant.Dataset, error) {
	var dto datasetDTO
	if err := decode(r, &dto); err != nil {
		return restaurant.Dataset{}, err
	}

	d := restaurant.Dataset{
		Info: concierge.RestaurantInfo{
			Name:       dto.Info.Name,
			Address:    dto.Info.Address,
			Phone:      dto.Info.Phone,
			Email:      dto.Info.Email,
			Website:    dto.Info.Website,
			Cuisine:    dto.Info.Cuisine,
			Rating:     dto.Info.Rating,
			PriceRange: dto.Info.PriceRange,
		},
		Hours: make(concierge.OperatingHours, len(dto.Hours)),
	}
	for name, h := range dto.Hours {
		day, ok := concierge.ParseWeekday(name)
		if !ok {
			return restaurant.Dataset{}, fmt.Errorf("hours: unknown weekday %q: %w", name, concierge.ErrValidation)
		}
		open, err := concierge.ParseTimeOfDay(h.Open)
		if err != nil {
			return restaurant.Dataset{}, fmt.Errorf("hours %s: open: %w", name, err)
		}
		closing, err := concierge.ParseTimeOfDay(h.Close)
		if err != nil {
			return restaurant.Dataset{}, fmt.Errorf("hours %s: close: %w", name, err)
		}
		d.Hours[day] = concierge.Hours{Open: open, Close: closing}
	}
	for _, s := range dto.Menu {
		cat, ok := concierge.ParseCategory(s.Category)
		if !ok {
			return restaurant.Dataset{}, fmt.Errorf("menu: unknown category %q: %w", s.Category, concierge.ErrValidation)
		}
		section := restaurant.Section{Category: cat, Items: make([]concierge.MenuItem, len(s.Items))}
		for i, it := range s.Items {
			section.Items[i] = concierge.MenuItem{
				Name:        it.Name,
				Description: it.Description,
				Price:       it.Price,
				Vegetarian:  it.Vegetarian,
			}
		}
		d.Menu = append(d.Menu, section)
	}
	for _, t := range dto.Tables {
		status := concierge.TableStatus(strings.ToLower(t.Status))
		if status == "" {
			status = concierge.TableAvailable
		}
		d.Tables = append(d.Tables, concierge.Table{ID: t.ID, Capacity: t.Capacity, Location: t.Location, Status: status})
	}

	if err := d.Validate(); err != nil {
		return restaurant.Dataset{}, err
	}
	return d, nil
}

// EncodeDataset writes d as a YAML document that DecodeDataset reads back.
func EncodeDataset(w io.Writer, d restaurant.Dataset) error {
	dto := datasetDTO{
		Info: infoDTO{
			Name:       d.Info.Name,
			Address:    d.Info.Address,
			Phone:      d.Info.Phone,
			Email:      d.Info.Email,
			Website:    d.Info.Website,
			Cuisine:    d.Info.Cuisine,
			Rating:     d.Info.Rating,
			PriceRange: d.Info.PriceRange,
		},
		Hours: make(map[string]hoursDTO, len(d.Hours)),
	}
	for day, h := range d.Hours {
		dto.Hours[strings.ToLower(day.String())] = hoursDTO{Open: h.Open.String(), Close: h.Close.String()}
	}
	for _, s := range d.Menu {
		sec := sectionDTO{Category: string(s.Category)}
		for _, it := range s.Items {
			sec.Items = append(sec.Items, itemDTO{Name: it.Name, Description: it.Description, Price: it.Price, Vegetarian: it.Vegetarian})
		}
		dto.Menu = append(dto.Menu, sec)
	}
	tables := append([]concierge.Table(nil), d.Tables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	for _, t := range tables {
		dto.Tables = append(dto.Tables, tableDTO{ID: t.ID, Capacity: t.Capacity, Location: t.Location, Status: string(t.Status)})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dto); err != nil {
		return fmt.Errorf("yaml: encode dataset: %w", err)
	}
	return enc.Close()
}
