package store

import (
	"fmt"
	"slices"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

var _ contractx.CatalogStore = (*Catalog)(nil)

// Catalog is an immutable product index. Callers always receive copies.
type Catalog struct {
	byID     map[string]contractx.Product
	ordered  []string
	tagVocab []string
}

func NewCatalog(products []contractx.Product) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]contractx.Product, len(products)),
		ordered: make([]string, 0, len(products)),
	}

	seenTags := make(map[string]struct{})
	for i, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: product[%d] has empty id", contractx.ErrValidation, i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate product id=%s", contractx.ErrValidation, id)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("%w: product id=%s has non-positive price %v", contractx.ErrValidation, id, p.Price)
		}

		p.ID = id
		p = cloneProduct(p)
		c.byID[id] = p
		c.ordered = append(c.ordered, id)

		for _, tag := range p.Tags {
			key := strings.ToLower(strings.TrimSpace(tag))
			if key == "" {
				continue
			}
			if _, ok := seenTags[key]; !ok {
				seenTags[key] = struct{}{}
				c.tagVocab = append(c.tagVocab, key)
			}
		}
	}
	slices.Sort(c.tagVocab)

	return c, nil
}

func (c *Catalog) Get(id string) (contractx.Product, error) {
	p, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return contractx.Product{}, fmt.Errorf("%w: product id=%s", contractx.ErrNotFound, id)
	}
	return cloneProduct(p), nil
}

// List returns every product in load order.
func (c *Catalog) List() []contractx.Product {
	out := make([]contractx.Product, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, cloneProduct(c.byID[id]))
	}
	return out
}

// Tags returns the sorted, lower-cased set of tags used across the catalog.
func (c *Catalog) Tags() []string {
	return slices.Clone(c.tagVocab)
}

func (c *Catalog) Len() int {
	return len(c.ordered)
}

func cloneProduct(p contractx.Product) contractx.Product {
	p.Tags = slices.Clone(p.Tags)
	p.Sizes = slices.Clone(p.Sizes)
	return p
}
