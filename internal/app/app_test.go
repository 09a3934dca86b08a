package app

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/dbtest"
	"github.com/talkincode/storefront/internal/domain"
)

func newTestApp(t *testing.T) *Application {
	cfg := *config.DefaultAppConfig
	a := NewApplication(&cfg)
	a.OverrideDB(dbtest.NewDB(t))
	return a
}

func TestImportCatalog(t *testing.T) {
	a := newTestApp(t)
	csv := `name,description,image,price,category,parent_category,characteristics
Phone,Nice phone,/img/phone.png,199.999,Phones,Electronics,"{""color"":""red""}"
Charger,,,15,Accessories,Electronics,
Mug,,,4.5,,,
`
	n, err := a.ImportCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products, err := a.Catalog().ListProducts(context.Background(), catalog.ProductFilter{Ordering: "-price"})
	require.NoError(t, err)
	require.Len(t, products, 3)
	phone := products[0]
	assert.Equal(t, "Phone", phone.Name)
	assert.Equal(t, "200.00", phone.Price.StringFixed(2))
	require.NotNil(t, phone.Description)
	assert.Equal(t, "Nice phone", *phone.Description)
	assert.Equal(t, "red", phone.Characteristics["color"])
	require.NotNil(t, phone.CategoryID)
	assert.Nil(t, products[2].CategoryID)

	var electronics domain.Category
	require.NoError(t, a.DB().Where("name = ?", "Electronics").First(&electronics).Error)
	view, err := a.Catalog().GetCategory(context.Background(), electronics.ID)
	require.NoError(t, err)
	assert.Len(t, view.Subcategories, 2)

	// re-import updates in place
	_, err = a.ImportCatalog(strings.NewReader("name,price,category\nMug,5.25,Kitchen\n"))
	require.NoError(t, err)
	var count int64
	a.DB().Model(&domain.Product{}).Count(&count)
	assert.Equal(t, int64(3), count)
	var mug domain.Product
	require.NoError(t, a.DB().Where("name = ?", "Mug").First(&mug).Error)
	assert.Equal(t, "5.25", mug.Price.StringFixed(2))
	assert.NotNil(t, mug.CategoryID)
}

func TestImportCatalogRejectsBadRow(t *testing.T) {
	a := newTestApp(t)
	_, err := a.ImportCatalog(strings.NewReader("name,price\nGood,1\nBad,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")

	// the whole file is rolled back
	var count int64
	a.DB().Model(&domain.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitDbSeedsCatalog(t *testing.T) {
	a := newTestApp(t)
	a.InitDb()

	products, err := a.Catalog().ListProducts(context.Background(), catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 4)

	// seeding is skipped once products exist
	a.checkCatalog()
	var count int64
	a.DB().Model(&domain.Product{}).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestSchedClearExpireData(t *testing.T) {
	a := newTestApp(t)
	old := &domain.OrderTaskLog{ID: 1, TaskID: "old", UserID: 1, Status: "success", CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}
	fresh := &domain.OrderTaskLog{ID: 2, TaskID: "fresh", UserID: 1, Status: "failure"}
	require.NoError(t, a.TaskLogs().Create(context.Background(), old))
	require.NoError(t, a.TaskLogs().Create(context.Background(), fresh))

	a.SchedClearExpireData()

	logs, err := a.TaskLogs().ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "fresh", logs[0].TaskID)
}

func TestMigrateDBIsRepeatable(t *testing.T) {
	a := newTestApp(t)
	assert.NoError(t, a.MigrateDB(false))
	assert.NoError(t, a.MigrateDB(false))
}

func TestMigrateDBOnFileDatabase(t *testing.T) {
	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "storefront.db"
	require.NoError(t, os.MkdirAll(cfg.GetDataDir(), 0o755))

	a := NewApplication(&cfg)
	a.gormDB = getDatabase(&cfg)
	t.Cleanup(func() {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, a.MigrateDB(false))
	a.initStores()

	cols, err := a.DB().Migrator().ColumnTypes(&domain.Product{})
	require.NoError(t, err)
	var attrType string
	for _, col := range cols {
		if col.Name() == "characteristics" {
			attrType = col.DatabaseTypeName()
		}
	}
	assert.True(t, strings.EqualFold("text", attrType), "characteristics column type %q", attrType)

	n, err := a.ImportCatalog(strings.NewReader("name,price,characteristics\nLamp,12.5,\"{\"\"watts\"\":40}\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var lamp domain.Product
	require.NoError(t, a.DB().Where("name = ?", "Lamp").First(&lamp).Error)
	assert.EqualValues(t, 40, lamp.Characteristics["watts"])
}

func TestImportCatalogTreatsNAAsEmpty(t *testing.T) {
	a := newTestApp(t)
	csv := `name,description,price,category,parent_category
Kettle,N/A,30,Kitchen,N/A
`
	_, err := a.ImportCatalog(strings.NewReader(csv))
	require.NoError(t, err)

	var kettle domain.Product
	require.NoError(t, a.DB().Where("name = ?", "Kettle").First(&kettle).Error)
	assert.Nil(t, kettle.Description)
	require.NotNil(t, kettle.CategoryID)

	var kitchen domain.Category
	require.NoError(t, a.DB().First(&kitchen, *kettle.CategoryID).Error)
	assert.Equal(t, "Kitchen", kitchen.Name)
	assert.Nil(t, kitchen.ParentID)

	var count int64
	a.DB().Model(&domain.Category{}).Where("name = ?", "N/A").Count(&count)
	assert.Zero(t, count)
}
