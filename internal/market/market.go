// Package market is the produce and equipment listing catalog.
package market

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Godzilla108108/agritech/internal/filter"
)

const (
	Vegetables = "vegetables"
	Fruits     = "fruits"
	Grains     = "grains"
	Dairy      = "dairy"
	Equipment  = "equipment"
)

// Categories are the filter tabs in display order.
var Categories = []string{filter.All, Vegetables, Fruits, Grains, Dairy, Equipment}

// DefaultMaxPrice is the upper end of the default price range.
const DefaultMaxPrice = 10000

var (
	ErrNotSeller = errors.New("only sellers can manage listings")
	ErrNotOwner  = errors.New("listing belongs to another seller")
	ErrNotFound  = errors.New("listing not found")
)

// Product is one listing.
type Product struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    string  `json:"quantity"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	Contact     string  `json:"contact"`
	Image       string  `json:"image,omitempty"`
	PostedOn    string  `json:"posted_on"`
}

// Draft is the editable part of a listing.
type Draft struct {
	Name        string
	Category    string
	Price       float64
	Quantity    string
	Description string
	State       string
	Contact     string
	Image       string
}

// DraftOf returns the editable fields of p.
func DraftOf(p Product) Draft {
	return Draft{
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Description: p.Description,
		State:       p.State,
		Contact:     p.Contact,
		Image:       p.Image,
	}
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

func (d Draft) apply(p Product) Product {
	p.Name = strings.TrimSpace(d.Name)
	p.Category = d.Category
	if p.Category == "" {
		p.Category = Vegetables
	}
	p.Price = d.Price
	p.Quantity = d.Quantity
	p.Description = d.Description
	p.State = d.State
	p.Contact = d.Contact
	p.Image = d.Image
	return p
}

// Catalog holds the listings and applies seller edits.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
	now      func() time.Time
}

func NewCatalog(products []Product) *Catalog {
	return &Catalog{products: append([]Product(nil), products...), now: time.Now}
}

// Products returns a copy of all listings in posting order.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Product(nil), c.products...)
}

// Add posts a new listing for seller u.
func (c *Catalog) Add(u User, d Draft) (Product, error) {
	if !u.IsSeller() {
		return Product{}, ErrNotSeller
	}
	if err := d.validate(); err != nil {
		return Product{}, err
	}
	p := d.apply(Product{
		ID:         uuid.NewString(),
		SellerID:   u.ID,
		SellerName: u.Name,
		PostedOn:   c.now().Format("2006-01-02"),
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, p)
	return p, nil
}

// Update replaces the editable fields of one of u's listings.
func (c *Catalog) Update(u User, id string, d Draft) (Product, error) {
	if err := d.validate(); err != nil {
		return Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.owned(u, id)
	if err != nil {
		return Product{}, err
	}
	c.products[i] = d.apply(c.products[i])
	return c.products[i], nil
}

// Delete removes one of u's listings.
func (c *Catalog) Delete(u User, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.owned(u, id)
	if err != nil {
		return err
	}
	c.products = append(c.products[:i:i], c.products[i+1:]...)
	return nil
}

func (c *Catalog) owned(u User, id string) (int, error) {
	if !u.IsSeller() {
		return 0, ErrNotSeller
	}
	for i, p := range c.products {
		if p.ID != id {
			continue
		}
		if p.SellerID != u.ID {
			return 0, ErrNotOwner
		}
		return i, nil
	}
	return 0, ErrNotFound
}
