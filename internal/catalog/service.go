// Package catalog serves read-only product and category queries.
package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("Product not found.")
	ErrCategoryNotFound = errors.New("Category not found.")
)

// ProductFilter narrows a product listing. Ordering is "price" or "-price",
// anything else falls back to ascending price.
type ProductFilter struct {
	CategoryID *int64
	Ordering   string
}

// allowed ordering expressions, keyed by the public parameter
var productOrdering = map[string]string{
	"price":  "price ASC, id ASC",
	"-price": "price DESC, id ASC",
}

// CategoryNode one level of the recursive subcategory tree
type CategoryNode struct {
	ID            int64          `json:"id"`
	Subcategories []CategoryNode `json:"subcategories"`
}

// CategoryView category as rendered by the API
type CategoryView struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Parent        *int64         `json:"parent,omitempty"`
	Subcategories []CategoryNode `json:"subcategories"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	order, ok := productOrdering[strings.TrimSpace(filter.Ordering)]
	if !ok {
		order = productOrdering["price"]
	}
	query := s.db.WithContext(ctx).Model(&domain.Product{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	products := make([]domain.Product, 0)
	if err := query.Order(order).Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &product, nil
}

// ListCategories returns every category, ordered by name, each carrying its
// full subcategory tree.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	all, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	tree := newCategoryTree(all)
	views := make([]CategoryView, 0, len(all))
	for _, c := range all {
		views = append(views, tree.view(c))
	}
	return views, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*CategoryView, error) {
	all, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			view := newCategoryTree(all).view(c)
			return &view, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (s *Service) loadCategories(ctx context.Context) ([]domain.Category, error) {
	var all []domain.Category
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&all).Error; err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	return all, nil
}

// categoryTree indexes children by parent id. Children keep the name order of
// the source slice.
type categoryTree struct {
	children map[int64][]int64
}

func newCategoryTree(all []domain.Category) *categoryTree {
	t := &categoryTree{children: make(map[int64][]int64)}
	for _, c := range all {
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
		}
	}
	return t
}

func (t *categoryTree) view(c domain.Category) CategoryView {
	return CategoryView{
		ID:            c.ID,
		Name:          c.Name,
		Parent:        c.ParentID,
		Subcategories: t.nodes(c.ID, map[int64]bool{c.ID: true}),
	}
}

// nodes walks the subtree below id. A parent chain that loops back onto a
// category already on the path is cut there.
func (t *categoryTree) nodes(id int64, path map[int64]bool) []CategoryNode {
	kids := t.children[id]
	nodes := make([]CategoryNode, 0, len(kids))
	for _, kid := range kids {
		if path[kid] {
			continue
		}
		path[kid] = true
		nodes = append(nodes, CategoryNode{ID: kid, Subcategories: t.nodes(kid, path)})
		delete(path, kid)
	}
	return nodes
}
