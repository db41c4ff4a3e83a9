package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrega-app/entrega/seed"
)

const seedJSON = `{
  "restaurants": [
    {"id": "1", "name": "Pizzaria Bella Napoli", "category": "Pizza", "rating": 4.8, "deliveryMinutes": "30-45 min", "deliveryFee": "4.99", "distanceKm": 1.2},
    {"id": "2", "name": "Burger House", "category": "Hambúrguer", "rating": 4.6, "deliveryMinutes": "25-40 min", "deliveryFee": "5.99", "distanceKm": 2.1}
  ],
  "items": [
    {"id": "1", "restaurantId": "1", "section": "Pizzas", "name": "Pizza Margherita", "price": "32.90", "customizations": ["Sem cebola", "Borda recheada (+R$ 8)"]},
    {"id": "2", "restaurantId": "1", "section": "Pizzas", "name": "Pizza Calabresa", "price": "36.90"},
    {"id": "3", "restaurantId": "2", "section": "Burgers", "name": "Classic Burger", "price": "24.90"}
  ]
}`

func loadMem(t *testing.T) *Memory {
	t.Helper()
	m, err := Load(strings.NewReader(seedJSON))
	require.NoError(t, err)
	return m
}

func TestLoad(t *testing.T) {
	m := loadMem(t)

	restaurants, err := m.ListRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, "Pizzaria Bella Napoli", restaurants[0].Name)
	assert.True(t, decimal.RequireFromString("4.99").Equal(restaurants[0].DeliveryFee))
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(strings.NewReader("{"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`{"restaurants": [], "items": []}`))
	assert.Error(t, err)
}

func TestGetRestaurant(t *testing.T) {
	m := loadMem(t)

	r, err := m.GetRestaurant(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Burger House", r.Name)

	_, err = m.GetRestaurant(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMenu(t *testing.T) {
	m := loadMem(t)

	menu, err := m.ListMenu(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Pizza Margherita", menu[0].Name)
	assert.Equal(t, "Pizza Calabresa", menu[1].Name)

	_, err = m.ListMenu(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetItem(t *testing.T) {
	m := loadMem(t)

	it, err := m.GetItem(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", it.RestaurantID)
	assert.True(t, decimal.RequireFromString("32.90").Equal(it.Price))
	assert.Contains(t, it.Customizations, "Sem cebola")

	_, err = m.GetItem(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	m := loadMem(t)
	ctx := context.Background()

	byName, err := m.Search(ctx, "napoli")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "1", byName[0].ID)

	byCategory, err := m.Search(ctx, "hambúrguer")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "2", byCategory[0].ID)

	all, err := m.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := m.Search(ctx, "sushi")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoad_EmbeddedSeed(t *testing.T) {
	rc, err := seed.OpenCatalog()
	require.NoError(t, err)
	defer rc.Close()

	m, err := Load(rc)
	require.NoError(t, err)

	it, err := m.GetItem(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Margherita", it.Name)
	assert.True(t, decimal.RequireFromString("32.90").Equal(it.Price))

	r, err := m.GetRestaurant(context.Background(), it.RestaurantID)
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria Bella Napoli", r.Name)
}
