package catalog

import (
	"context"
	"sort"

	"github.com/dgcastano/provision/internal/demand"
)

// MemoryAccessor is an in-memory Accessor for tests and what-if runs that
// don't touch a database.
type MemoryAccessor struct {
	materials     []Material
	presentations map[int64][]Presentation // per material, insertion order
	products      []Product
	recipes       map[string][]RecipeLine
	history       demand.Set
}

// NewMemoryAccessor returns an empty in-memory catalog.
func NewMemoryAccessor() *MemoryAccessor {
	return &MemoryAccessor{
		presentations: make(map[int64][]Presentation),
		recipes:       make(map[string][]RecipeLine),
		history:       make(demand.Set),
	}
}

// AddMaterial registers a material and returns it with an assigned ID.
func (m *MemoryAccessor) AddMaterial(mat Material) Material {
	mat.ID = int64(len(m.materials) + 1)
	m.materials = append(m.materials, mat)
	return mat
}

// AddPresentation registers a packaging option for a material. Registration
// order is preserved; the first registered presentation is the one a planning
// run selects.
func (m *MemoryAccessor) AddPresentation(p Presentation) {
	m.presentations[p.MaterialID] = append(m.presentations[p.MaterialID], p)
}

// AddProduct registers a product.
func (m *MemoryAccessor) AddProduct(p Product) Product {
	p.ID = int64(len(m.products) + 1)
	m.products = append(m.products, p)
	return p
}

// AddRecipeLine links a product to a material.
func (m *MemoryAccessor) AddRecipeLine(l RecipeLine) {
	m.recipes[l.ProductCode] = append(m.recipes[l.ProductCode], l)
}

// SetHistory replaces the historical demand set returned by HistoricalDemand.
func (m *MemoryAccessor) SetHistory(set demand.Set) {
	m.history = set
}

// Snapshot implements Accessor.
func (m *MemoryAccessor) Snapshot(_ context.Context, category string) (*Snapshot, error) {
	snap := &Snapshot{
		Presentations: make(map[int64]Presentation),
		Products:      make(map[string]Product),
		Recipes:       make(map[string][]RecipeLine),
	}

	kept := make(map[int64]bool)
	for _, mat := range m.materials {
		if category != "" && mat.Category != category {
			continue
		}
		snap.Materials = append(snap.Materials, mat)
		kept[mat.ID] = true
		if ps := m.presentations[mat.ID]; len(ps) > 0 {
			snap.Presentations[mat.ID] = ps[0]
		}
	}
	sort.Slice(snap.Materials, func(i, j int) bool {
		return snap.Materials[i].Name < snap.Materials[j].Name
	})

	for _, p := range m.products {
		snap.Products[p.Code] = p
	}
	for code, lines := range m.recipes {
		for _, l := range lines {
			if kept[l.MaterialID] {
				snap.Recipes[code] = append(snap.Recipes[code], l)
			}
		}
	}
	return snap, nil
}

// ProductsUsingCategory implements Accessor.
func (m *MemoryAccessor) ProductsUsingCategory(_ context.Context, category string) ([]Product, error) {
	matCategory := make(map[int64]string, len(m.materials))
	for _, mat := range m.materials {
		matCategory[mat.ID] = mat.Category
	}

	uses := make(map[string]bool)
	for code, lines := range m.recipes {
		for _, l := range lines {
			if category == "" || matCategory[l.MaterialID] == category {
				uses[code] = true
				break
			}
		}
	}

	var out []Product
	for _, p := range m.products {
		if uses[p.Code] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// HistoricalDemand implements Accessor. Report selection is ignored; the
// in-memory catalog holds a single pre-averaged set.
func (m *MemoryAccessor) HistoricalDemand(_ context.Context, _ []int64) (demand.Set, error) {
	return m.history, nil
}
