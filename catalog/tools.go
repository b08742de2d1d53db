package catalog

import (
	"context"
	"strings"

	"github.com/fwojciec/concierge"
)

// Tool names.
const (
	ToolAllMenuItems       = "allMenuItems"
	ToolMenuByCategory     = "menuByCategory"
	ToolVegetarianItems    = "vegetarianItems"
	ToolNonVegetarianItems = "nonVegetarianItems"
	ToolAvailableTables    = "availableTables"
	ToolTablesByCapacity   = "tablesByCapacity"
	ToolIsOpenNow          = "isOpenNow"
	ToolRestaurantInfo     = "restaurantInfo"
	ToolOperatingHours     = "operatingHours"
	ToolBookTable          = "bookTable"
)

const (
	returnsMenu   = "array of {name, description, price, vegetarian, category}"
	returnsTables = "object keyed by table id of {id, capacity, location, status}"
)

func categoryNames() string {
	cats := concierge.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (c *Catalog) build() []entry {
	entries := []entry{
		{
			tool: concierge.Tool{
				Name:        ToolAllMenuItems,
				Description: "Get all menu items from all categories",
				Returns:     returnsMenu,
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return menuItems(c.store.AllMenuItems()), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolMenuByCategory,
				Description: "Get menu items by category. Categories: " + categoryNames() + ". Unknown categories return an empty list.",
				Params: []concierge.Param{
					{Name: "category", Type: concierge.ParamString, Required: true, Description: "Menu category, case-insensitive"},
				},
				Returns: returnsMenu,
			},
			run: func(_ context.Context, args concierge.Arguments) (any, error) {
				category, _ := args.String("category")
				return menuItems(c.store.MenuByCategory(category)), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolVegetarianItems,
				Description: "Get all vegetarian items",
				Returns:     returnsMenu,
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return menuItems(c.store.VegetarianItems()), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolNonVegetarianItems,
				Description: "Get all non-vegetarian items",
				Returns:     returnsMenu,
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return menuItems(c.store.NonVegetarianItems()), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolAvailableTables,
				Description: "Get all available tables",
				Returns:     returnsTables,
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return tables(c.store.AvailableTables()), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolTablesByCapacity,
				Description: "Get tables seating at least the given number of guests, regardless of status",
				Params: []concierge.Param{
					{Name: "capacity", Type: concierge.ParamInteger, Required: true, Description: "Minimum number of seats", Minimum: concierge.IntPtr(0)},
				},
				Returns: returnsTables,
			},
			run: func(_ context.Context, args concierge.Arguments) (any, error) {
				n, _ := args.Integer("capacity")
				ts, err := c.store.TablesByCapacity(int(n))
				if err != nil {
					return nil, err
				}
				return tables(ts), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolIsOpenNow,
				Description: "Check if the restaurant is currently open",
				Returns:     "boolean",
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return c.store.IsOpenNow(), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolRestaurantInfo,
				Description: "Get the restaurant's name, address, contact details, cuisine, rating and price range",
				Returns:     "object {name, address, phone, email, website, cuisine, rating, price_range}",
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return info(c.store.Info()), nil
			},
		},
		{
			tool: concierge.Tool{
				Name:        ToolOperatingHours,
				Description: "Get the weekly opening hours",
				Returns:     "object keyed by lowercase weekday of {open, close} in HH:MM",
			},
			run: func(context.Context, concierge.Arguments) (any, error) {
				return hours(c.store.OperatingHours()), nil
			},
		},
	}
	if c.booking {
		entries = append(entries, entry{
			tool: concierge.Tool{
				Name:        ToolBookTable,
				Description: "Reserve an available table by id",
				Params: []concierge.Param{
					{Name: "tableId", Type: concierge.ParamInteger, Required: true, Description: "Table id", Minimum: concierge.IntPtr(1)},
				},
				Returns: "the reserved table {id, capacity, location, status}",
			},
			run: func(_ context.Context, args concierge.Arguments) (any, error) {
				id, _ := args.Integer("tableId")
				t, err := c.store.BookTable(int(id))
				if err != nil {
					return nil, err
				}
				c.logger.Info("table booked", "table", t.ID)
				return table(t), nil
			},
		})
	}
	return entries
}
