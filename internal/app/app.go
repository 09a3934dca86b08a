package app

import (
	"fmt"
	"os"
	"path"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/geocoder"
	"github.com/talkincode/storefront/internal/notify"
	"github.com/talkincode/storefront/internal/payment"
	"github.com/talkincode/storefront/internal/shop"
	"github.com/talkincode/storefront/internal/taskq"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Application struct {
	appConfig   *config.AppConfig
	gormDB      *gorm.DB
	sched       *cron.Cron
	bus         EventBus.Bus
	cartService *shop.CartService
	catalog     *catalog.Service
	taskLogs    shop.TaskLogRepository
	geocoder    geocoder.Client
	queue       OrderQueue
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ ShopProvider      = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig, bus: EventBus.New()}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.initStores()
}

// OverrideGeocoder replaces the geocoding client (used in tests).
func (a *Application) OverrideGeocoder(c geocoder.Client) {
	a.geocoder = c
}

// OverrideOrderQueue replaces the order queue (used in tests).
func (a *Application) OverrideOrderQueue(q OrderQueue) {
	a.queue = q
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.initStores()
	if err := a.initServices(); err != nil {
		zap.S().Errorf("order services init failed: %v", err)
	}
	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

// getDatabase opens postgres or sqlite; sqlite files live in the data dir
// unless an absolute path is configured.
func getDatabase(cfg *config.AppConfig) *gorm.DB {
	dbcfg := cfg.Database
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if dbcfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch dbcfg.Type {
	case "sqlite":
		dbfile := dbcfg.Name
		if dbfile != ":memory:" && !path.IsAbs(dbfile) {
			dbfile = path.Join(cfg.GetDataDir(), dbfile)
		}
		dialector = sqlite.Open(dbfile + "?_foreign_keys=on")
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			dbcfg.Host, dbcfg.Port, dbcfg.User, dbcfg.Passwd, dbcfg.Name, cfg.System.Location)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		zap.S().Fatalf("database connection failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Fatalf("database handle error: %v", err)
	}
	if dbcfg.Type == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(dbcfg.MaxConn)
		sqlDB.SetMaxIdleConns(dbcfg.IdleConn)
	}
	return db
}

func (a *Application) initStores() {
	a.cartService = shop.NewCartService(shop.NewGormCartRepository(a.gormDB))
	a.catalog = catalog.NewService(a.gormDB)
	a.taskLogs = shop.NewGormTaskLogRepository(a.gormDB)
}

// initServices wires the payment gateway, mailer and geocoder from config
// into the order queue.
func (a *Application) initServices() error {
	cfg := a.appConfig
	gateway := payment.NewYooKassaClient(cfg.Payment.Endpoint, cfg.Payment.ShopID, cfg.Payment.SecretKey,
		time.Duration(cfg.Payment.Timeout)*time.Second)
	mailer := notify.NewSMTPMailer(cfg.Mail, cfg.Payment.Currency)
	processor := shop.NewOrderProcessor(
		shop.NewGormCartRepository(a.gormDB),
		shop.NewGormOrderRepository(a.gormDB),
		shop.NewGormUserRepository(a.gormDB),
		gateway,
		mailer,
		shop.OrderOptions{Currency: cfg.Payment.Currency, ReturnURL: cfg.Payment.ReturnURL},
	)

	queue, err := taskq.NewQueue(cfg.Worker.PoolSize, processor, a.taskLogs, a.bus)
	if err != nil {
		return err
	}
	a.queue = queue
	a.geocoder = geocoder.NewYandexClient(cfg.Geocoder.Endpoint, cfg.Geocoder.ApiKey,
		time.Duration(cfg.Geocoder.Timeout)*time.Second)

	return a.subscribeOrderEvents()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
	a.checkCatalog()
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) CartService() *shop.CartService {
	return a.cartService
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalog
}

func (a *Application) OrderQueue() OrderQueue {
	return a.queue
}

func (a *Application) Geocoder() geocoder.Client {
	return a.geocoder
}

func (a *Application) TaskLogs() shop.TaskLogRepository {
	return a.taskLogs
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if q, ok := a.queue.(*taskq.Queue); ok {
		q.Release()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
