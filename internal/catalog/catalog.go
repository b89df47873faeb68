// Package catalog provides the read-only product catalog consumed by the cart
// state machine. The catalog is an explicit configuration object passed in at
// construction, never ambient global state.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Product ids of the built-in coffee menu.
const (
	Ristretto  = "Ristretto"
	Espresso   = "Espresso"
	Cappuccino = "Cappuccino"
)

// Product describes one purchasable product.
type Product struct {
	ID    string  `yaml:"id" json:"productId"`
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
}

// Catalog is an immutable productId → product mapping.
type Catalog struct {
	products map[string]Product
}

// New builds a catalog from the given products.
// Later entries with a duplicate id silently win; use Load for validated input.
func New(products ...Product) Catalog {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return Catalog{products: m}
}

// Default is the built-in coffee menu.
func Default() Catalog {
	return New(
		Product{ID: Ristretto, Name: "Ristretto from Kongo", Price: 1},
		Product{ID: Espresso, Name: "Espresso from Columbia", Price: 1},
		Product{ID: Cappuccino, Name: "Cappuccino from Italy", Price: 2},
	)
}

// Lookup returns the product for id, or ok=false when the id is unknown.
func (c Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Len returns the number of products.
func (c Catalog) Len() int {
	return len(c.products)
}

// Products returns all products sorted by id.
func (c Catalog) Products() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Listing renders the catalog as one line per product, sorted by id.
// Used by the CLI and by golden tests.
func (c Catalog) Listing() string {
	var out string
	for _, p := range c.Products() {
		out += fmt.Sprintf("%s: %s (%.2f)\n", p.ID, p.Name, p.Price)
	}
	return out
}

// Load parses a YAML product list.
//
// Expected shape:
//
//	- id: Ristretto
//	  name: Ristretto from Kongo
//	  price: 1
func Load(data []byte) (Catalog, error) {
	var products []Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(products) == 0 {
		return Catalog{}, fmt.Errorf("catalog is empty")
	}

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("catalog entry %q has no id", p.Name)
		}
		if seen[p.ID] {
			return Catalog{}, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return Catalog{}, fmt.Errorf("product %q has negative price", p.ID)
		}
		seen[p.ID] = true
	}

	return New(products...), nil
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}
