package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/geocoder"
	"github.com/talkincode/storefront/internal/shop"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// OrderQueue accepts checkouts for asynchronous processing
type OrderQueue interface {
	EnqueueOrder(userID int64) (taskID string, err error)
	Running() int
}

// ShopProvider provides the storefront services used by the HTTP layer
type ShopProvider interface {
	CartService() *shop.CartService
	Catalog() *catalog.Service
	OrderQueue() OrderQueue
	Geocoder() geocoder.Client
	TaskLogs() shop.TaskLogRepository
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ShopProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
