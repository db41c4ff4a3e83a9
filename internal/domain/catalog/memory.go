package catalog

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var _ Repository = (*Memory)(nil)

// Memory is an in-memory Repository over a fixed data set. It is immutable
// after construction, so reads need no locking.
type Memory struct {
	restaurants []Restaurant
	byID        map[string]*Restaurant
	items       []MenuItem
	itemByID    map[string]*MenuItem
	menu        map[string][]MenuItem
}

// NewMemory builds a Memory repository from the given data. Menu order
// within a restaurant follows the input order.
func NewMemory(restaurants []Restaurant, items []MenuItem) *Memory {
	m := &Memory{
		restaurants: restaurants,
		byID:        make(map[string]*Restaurant, len(restaurants)),
		items:       items,
		itemByID:    make(map[string]*MenuItem, len(items)),
		menu:        make(map[string][]MenuItem),
	}
	for i := range m.restaurants {
		r := &m.restaurants[i]
		m.byID[r.ID] = r
	}
	for i := range m.items {
		it := &m.items[i]
		m.itemByID[it.ID] = it
		m.menu[it.RestaurantID] = append(m.menu[it.RestaurantID], *it)
	}
	return m
}

// seedFile mirrors the embedded catalog JSON layout.
type seedFile struct {
	Restaurants []seedRestaurant `json:"restaurants"`
	Items       []seedItem       `json:"items"`
}

type seedRestaurant struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Rating          float64         `json:"rating"`
	DeliveryMinutes string          `json:"deliveryMinutes"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	DistanceKm      float64         `json:"distanceKm"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
}

type seedItem struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurantId"`
	Section        string          `json:"section"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	Customizations []string        `json:"customizations"`
}

// Load decodes the seed catalog JSON from r and builds a Memory repository.
func Load(r io.Reader) (*Memory, error) {
	var f seedFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode catalog seed")
	}
	if len(f.Restaurants) == 0 {
		return nil, errors.New("catalog seed has no restaurants")
	}

	restaurants := make([]Restaurant, len(f.Restaurants))
	for i, sr := range f.Restaurants {
		restaurants[i] = Restaurant{
			ID:              sr.ID,
			Name:            sr.Name,
			Category:        sr.Category,
			Rating:          sr.Rating,
			DeliveryMinutes: sr.DeliveryMinutes,
			DeliveryFee:     sr.DeliveryFee,
			DistanceKm:      sr.DistanceKm,
			Image:           sr.Image,
			Description:     sr.Description,
		}
	}
	items := make([]MenuItem, len(f.Items))
	for i, si := range f.Items {
		items[i] = MenuItem{
			ID:             si.ID,
			RestaurantID:   si.RestaurantID,
			Section:        si.Section,
			Name:           si.Name,
			Description:    si.Description,
			Price:          si.Price,
			Image:          si.Image,
			Customizations: si.Customizations,
		}
	}
	return NewMemory(restaurants, items), nil
}

// ListRestaurants returns all restaurants in seed order.
func (m *Memory) ListRestaurants(_ context.Context) ([]Restaurant, error) {
	out := make([]Restaurant, len(m.restaurants))
	copy(out, m.restaurants)
	return out, nil
}

// GetRestaurant returns the restaurant with the given ID or ErrNotFound.
func (m *Memory) GetRestaurant(_ context.Context, id string) (*Restaurant, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListMenu returns the restaurant's menu items in seed order. An unknown
// restaurant yields ErrNotFound.
func (m *Memory) ListMenu(_ context.Context, restaurantID string) ([]MenuItem, error) {
	if _, ok := m.byID[restaurantID]; !ok {
		return nil, ErrNotFound
	}
	items := m.menu[restaurantID]
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out, nil
}

// GetItem returns the menu item with the given ID or ErrNotFound.
func (m *Memory) GetItem(_ context.Context, id string) (*MenuItem, error) {
	it, ok := m.itemByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

// Search returns restaurants whose name or category contains the query,
// case-insensitively. An empty query matches everything.
func (m *Memory) Search(_ context.Context, query string) ([]Restaurant, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return m.ListRestaurants(context.Background())
	}
	var out []Restaurant
	for _, r := range m.restaurants {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Category), q) {
			out = append(out, r)
		}
	}
	return out, nil
}
