// Package catalog holds the course catalogue shown by the bot and the
// library. It is loaded once from a JSON file.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Product struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	ShortDesc string `json:"short_desc"`
	FullDesc  string `json:"full_desc"`
	Audience  string `json:"audience"`
	Contents  string `json:"contents"`
	Lessons   int    `json:"lessons"`
}

type File struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// Registry keeps categories and products in file order.
type Registry struct {
	mu         sync.RWMutex
	categories []*Category
	products   []*Product
	byID       map[string]*Product
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Product),
	}
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Categories {
		registry.AddCategory(&file.Categories[i])
	}
	for i := range file.Products {
		if err := registry.AddProduct(&file.Products[i]); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *Registry) AddCategory(c *Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, c)
}

// AddProduct registers p. The product id must be unique and its category
// must already be registered.
func (r *Registry) AddProduct(p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[p.ID]; dup {
		return fmt.Errorf("duplicate product %q", p.ID)
	}
	known := false
	for _, c := range r.categories {
		if c.ID == p.Category {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("product %q references unknown category %q", p.ID, p.Category)
	}

	r.products = append(r.products, p)
	r.byID[p.ID] = p
	return nil
}

func (r *Registry) Categories() []*Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Category(nil), r.categories...)
}

func (r *Registry) Category(id string) *Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *Registry) Product(id string) *Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

func (r *Registry) ProductsIn(categoryID string) []*Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*Product
	for _, p := range r.products {
		if p.Category == categoryID {
			result = append(result, p)
		}
	}
	return result
}

func (r *Registry) Products() []*Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Product(nil), r.products...)
}
