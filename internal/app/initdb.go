package app

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// catalogRecord one row of a catalog import file
type catalogRecord struct {
	Name            string `csv:"name"`
	Description     string `csv:"description"`
	Image           string `csv:"image"`
	Price           string `csv:"price"`
	Category        string `csv:"category"`
	ParentCategory  string `csv:"parent_category"`
	Characteristics string `csv:"characteristics"`
}

// checkCatalog seeds a demo catalog into an empty database
func (a *Application) checkCatalog() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count > 0 {
		return
	}
	n, err := a.ImportCatalog(strings.NewReader(defaultCatalogCSV))
	if err != nil {
		zap.L().Error("failed to seed default catalog", zap.Error(err))
		return
	}
	zap.L().Info("initialized default catalog", zap.Int("products", n))
}

const defaultCatalogCSV = `name,description,image,price,category,parent_category,characteristics
Smartphone X,6.1 inch display,,49990.00,Phones,Electronics,"{""memory"":""128GB"",""color"":""black""}"
Smartphone X Pro,6.7 inch display,,69990.00,Phones,Electronics,"{""memory"":""256GB"",""color"":""silver""}"
Wireless Earbuds,,,7990.00,Audio,Electronics,"{""battery_hours"":24}"
Cotton T-Shirt,Plain crew neck,,1290.00,Clothing,,"{""size"":""M""}"
`

// ImportCatalog upserts products (matched by name) and their categories from
// a CSV stream. It returns the number of imported rows.
func (a *Application) ImportCatalog(r io.Reader) (int, error) {
	var records []*catalogRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return 0, errors.Wrap(err, "parse catalog csv")
	}

	err := a.gormDB.Transaction(func(tx *gorm.DB) error {
		categories := map[string]*domain.Category{}
		for i, rec := range records {
			product, err := rec.toProduct()
			if err != nil {
				return errors.Wrapf(err, "row %d", i+2)
			}
			if name := cell(rec.Category); name != "" {
				var parentID *int64
				if pname := cell(rec.ParentCategory); pname != "" {
					parent, err := ensureCategory(tx, categories, pname, nil)
					if err != nil {
						return err
					}
					parentID = &parent.ID
				}
				cat, err := ensureCategory(tx, categories, name, parentID)
				if err != nil {
					return err
				}
				product.CategoryID = &cat.ID
			}

			var existing domain.Product
			err = tx.Where("name = ?", product.Name).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				err = tx.Create(product).Error
			case err == nil:
				product.ID = existing.ID
				product.CreatedAt = existing.CreatedAt
				err = tx.Save(product).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (rec *catalogRecord) toProduct() (*domain.Product, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rec.Price))
	if err != nil {
		return nil, errors.Errorf("invalid price %q", rec.Price)
	}
	p := &domain.Product{
		Name:  name,
		Image: cell(rec.Image),
		Price: price.Round(2),
	}
	if d := cell(rec.Description); d != "" {
		p.Description = &d
	}
	if c := cell(rec.Characteristics); c != "" {
		attrs := domain.JSONMap{}
		if err := jsoniter.UnmarshalFromString(c, &attrs); err != nil {
			return nil, errors.Wrap(err, "invalid characteristics")
		}
		p.Characteristics = attrs
	}
	return p, nil
}

// cell trims an optional column, N/A counts as empty
func cell(v string) string {
	if common.IsEmptyOrNA(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// ensureCategory finds a category by name or creates it under parentID
func ensureCategory(tx *gorm.DB, cache map[string]*domain.Category, name string, parentID *int64) (*domain.Category, error) {
	if c, ok := cache[name]; ok {
		return c, nil
	}
	var c domain.Category
	err := tx.Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = domain.Category{Name: name, ParentID: parentID}
		err = tx.Create(&c).Error
	}
	if err != nil {
		return nil, err
	}
	cache[name] = &c
	return &c, nil
}
