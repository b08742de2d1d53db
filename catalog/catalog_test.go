package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/catalog"
	"github.com/fwojciec/concierge/restaurant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(opts ...catalog.Option) *catalog.Catalog {
	store := restaurant.New(restaurant.DefaultDataset(), restaurant.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	}))
	return catalog.New(store, opts...)
}

func toolNames(tools []concierge.Tool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}

func TestCatalog_List(t *testing.T) {
	t.Parallel()

	t.Run("publishes the read-only tools", func(t *testing.T) {
		t.Parallel()
		c := newCatalog()
		assert.Equal(t, []string{
			"allMenuItems",
			"menuByCategory",
			"vegetarianItems",
			"nonVegetarianItems",
			"availableTables",
			"tablesByCapacity",
			"isOpenNow",
			"restaurantInfo",
			"operatingHours",
		}, toolNames(c.List()))
	})

	t.Run("booking is opt-in", func(t *testing.T) {
		t.Parallel()
		c := newCatalog(catalog.WithBooking(true))
		assert.Contains(t, toolNames(c.List()), "bookTable")
	})

	t.Run("stable across calls and not aliased", func(t *testing.T) {
		t.Parallel()
		c := newCatalog()
		first := c.List()
		first[5].Params[0].Name = "mutated"
		assert.Equal(t, "capacity", c.List()[5].Params[0].Name)

		tools, err := c.Tools(context.Background())
		require.NoError(t, err)
		assert.Equal(t, c.List(), tools)
	})
}

func TestCatalog_Invoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCatalog()

	t.Run("unknown tool", func(t *testing.T) {
		t.Parallel()
		_, err := c.Invoke(ctx, "nonexistent_tool", json.RawMessage(`{}`))
		assert.Equal(t, concierge.KindUnknownTool, concierge.KindOf(err))
	})

	t.Run("negative capacity is invalid", func(t *testing.T) {
		t.Parallel()
		_, err := c.Invoke(ctx, "tablesByCapacity", json.RawMessage(`{"capacity":-1}`))
		require.Error(t, err)
		e, ok := concierge.AsError(err)
		require.True(t, ok)
		assert.Equal(t, concierge.KindInvalidArgument, e.Kind)
		assert.Equal(t, "capacity", e.Field)
	})

	t.Run("missing required argument", func(t *testing.T) {
		t.Parallel()
		_, err := c.Invoke(ctx, "menuByCategory", nil)
		assert.Equal(t, concierge.KindInvalidArgument, concierge.KindOf(err))
	})

	t.Run("vegetarian items", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "vegetarianItems", json.RawMessage(`{}`))
		require.NoError(t, err)
		var items []map[string]any
		require.NoError(t, json.Unmarshal(out, &items))
		require.NotEmpty(t, items)
		assert.Equal(t, "Samosa", items[0]["name"])
		assert.Equal(t, "appetizers", items[0]["category"])
		for _, it := range items {
			assert.Equal(t, true, it["vegetarian"])
		}
	})

	t.Run("unknown category is an empty array", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "menuByCategory", json.RawMessage(`{"category":"nonexistent"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(out))
	})

	t.Run("category is case-insensitive", func(t *testing.T) {
		t.Parallel()
		upper, err := c.Invoke(ctx, "menuByCategory", json.RawMessage(`{"category":"APPETIZERS"}`))
		require.NoError(t, err)
		lower, err := c.Invoke(ctx, "menuByCategory", json.RawMessage(`{"category":"appetizers"}`))
		require.NoError(t, err)
		assert.JSONEq(t, string(lower), string(upper))
	})

	t.Run("tables are keyed by id", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "tablesByCapacity", json.RawMessage(`{"capacity":8}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"7": {"id": 7, "capacity": 8, "location": "Private", "status": "available"},
			"8": {"id": 8, "capacity": 8, "location": "Private", "status": "available"}
		}`, string(out))
	})

	t.Run("is open now", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "isOpenNow", nil)
		require.NoError(t, err)
		assert.Equal(t, "true", string(out))
	})

	t.Run("restaurant info", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "restaurantInfo", nil)
		require.NoError(t, err)
		var info map[string]any
		require.NoError(t, json.Unmarshal(out, &info))
		assert.Equal(t, "Spice Garden - Authentic Indian Cuisine", info["name"])
		assert.Equal(t, "₹₹₹", info["price_range"])
	})

	t.Run("operating hours", func(t *testing.T) {
		t.Parallel()
		out, err := c.Invoke(ctx, "operatingHours", nil)
		require.NoError(t, err)
		var hours map[string]map[string]string
		require.NoError(t, json.Unmarshal(out, &hours))
		assert.Len(t, hours, 7)
		assert.Equal(t, map[string]string{"open": "12:00", "close": "22:00"}, hours["sunday"])
	})

	t.Run("cancelled context is an execution error", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.Invoke(cctx, "allMenuItems", nil)
		assert.Equal(t, concierge.KindToolExecution, concierge.KindOf(err))
	})
}

func TestCatalog_BookTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCatalog(catalog.WithBooking(true))

	out, err := c.Invoke(ctx, "bookTable", json.RawMessage(`{"tableId":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"capacity":2,"location":"Window","status":"reserved"}`, string(out))

	_, err = c.Invoke(ctx, "bookTable", json.RawMessage(`{"tableId":2}`))
	assert.Equal(t, concierge.KindInvalidArgument, concierge.KindOf(err))

	avail, err := c.Invoke(ctx, "availableTables", nil)
	require.NoError(t, err)
	assert.NotContains(t, string(avail), `"2":`)
}

func TestCatalog_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("panic is reported as execution error", func(t *testing.T) {
		t.Parallel()
		c := newCatalog()
		catalog.AddToolForTest(c, concierge.Tool{Name: "explode"}, func(context.Context, concierge.Arguments) (any, error) {
			panic("kaboom")
		})
		_, err := c.Invoke(ctx, "explode", nil)
		require.Error(t, err)
		assert.Equal(t, concierge.KindToolExecution, concierge.KindOf(err))
		assert.Contains(t, err.Error(), "kaboom")

		// The catalog keeps serving afterwards.
		_, err = c.Invoke(ctx, "isOpenNow", nil)
		assert.NoError(t, err)
	})

	t.Run("plain error is reported as execution error", func(t *testing.T) {
		t.Parallel()
		c := newCatalog()
		cause := errors.New("disk on fire")
		catalog.AddToolForTest(c, concierge.Tool{Name: "broken"}, func(context.Context, concierge.Arguments) (any, error) {
			return nil, cause
		})
		_, err := c.Invoke(ctx, "broken", nil)
		assert.Equal(t, concierge.KindToolExecution, concierge.KindOf(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("unencodable result is reported as execution error", func(t *testing.T) {
		t.Parallel()
		c := newCatalog()
		catalog.AddToolForTest(c, concierge.Tool{Name: "weird"}, func(context.Context, concierge.Arguments) (any, error) {
			return make(chan int), nil
		})
		_, err := c.Invoke(ctx, "weird", nil)
		assert.Equal(t, concierge.KindToolExecution, concierge.KindOf(err))
	})
}
