package config

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	JwtSecret string `yaml:"jwt_secret"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// PaymentConfig payment gateway credentials and defaults
type PaymentConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ShopID    string `yaml:"shop_id"`
	SecretKey string `yaml:"secret_key"`
	Currency  string `yaml:"currency"`
	ReturnURL string `yaml:"return_url"`
	Timeout   int    `yaml:"timeout"` // seconds, 0 means no timeout
}

// GeocoderConfig geocoding API settings
type GeocoderConfig struct {
	Endpoint string `yaml:"endpoint"`
	ApiKey   string `yaml:"api_key"`
	Timeout  int    `yaml:"timeout"`
}

// MailConfig SMTP settings for notification emails
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Lang     string `yaml:"lang"`
}

// WorkerConfig background task pool settings
type WorkerConfig struct {
	PoolSize int `yaml:"pool_size"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Payment  PaymentConfig  `yaml:"payment"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Mail     MailConfig     `yaml:"mail"`
	Worker   WorkerConfig   `yaml:"worker"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Storefront",
		Location: "Europe/Moscow",
		Workdir:  "/var/storefront",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      8000,
		JwtSecret: "9b6de5cc-0731-4bf1-storefront-dev",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "storefront",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storefront/logs/storefront.log",
	},
	Payment: PaymentConfig{
		Endpoint:  "https://api.yookassa.ru/v3",
		Currency:  "RUB",
		ReturnURL: "https://example.com/payment/success/",
	},
	Geocoder: GeocoderConfig{
		Endpoint: "https://geocode-maps.yandex.ru/1.x/",
		Timeout:  10,
	},
	Mail: MailConfig{
		Host: "localhost",
		Port: 25,
		From: "noreply@example.com",
		Lang: "ru",
	},
	Worker: WorkerConfig{
		PoolSize: 16,
	},
}

// LoadConfig reads the YAML file (if any) on top of the defaults and then applies
// STOREFRONT_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}
	applyEnv(&cfg)
	cfg.initDirs()
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvString("STOREFRONT_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvString("STOREFRONT_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBool("STOREFRONT_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvString("STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setEnvInt("STOREFRONT_WEB_PORT", &cfg.Web.Port)
	setEnvString("STOREFRONT_WEB_JWT_SECRET", &cfg.Web.JwtSecret)

	setEnvString("STOREFRONT_DB_TYPE", &cfg.Database.Type)
	setEnvString("STOREFRONT_DB_HOST", &cfg.Database.Host)
	setEnvInt("STOREFRONT_DB_PORT", &cfg.Database.Port)
	setEnvString("STOREFRONT_DB_NAME", &cfg.Database.Name)
	setEnvString("STOREFRONT_DB_USER", &cfg.Database.User)
	setEnvString("STOREFRONT_DB_PWD", &cfg.Database.Passwd)
	setEnvBool("STOREFRONT_DB_DEBUG", &cfg.Database.Debug)

	setEnvString("STOREFRONT_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBool("STOREFRONT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvString("STOREFRONT_PAYMENT_ENDPOINT", &cfg.Payment.Endpoint)
	setEnvString("STOREFRONT_PAYMENT_SHOP_ID", &cfg.Payment.ShopID)
	setEnvString("STOREFRONT_PAYMENT_SECRET_KEY", &cfg.Payment.SecretKey)
	setEnvString("STOREFRONT_PAYMENT_CURRENCY", &cfg.Payment.Currency)
	setEnvString("STOREFRONT_PAYMENT_RETURN_URL", &cfg.Payment.ReturnURL)
	setEnvInt("STOREFRONT_PAYMENT_TIMEOUT", &cfg.Payment.Timeout)

	setEnvString("STOREFRONT_GEOCODER_ENDPOINT", &cfg.Geocoder.Endpoint)
	setEnvString("STOREFRONT_GEOCODER_API_KEY", &cfg.Geocoder.ApiKey)

	setEnvString("STOREFRONT_MAIL_HOST", &cfg.Mail.Host)
	setEnvInt("STOREFRONT_MAIL_PORT", &cfg.Mail.Port)
	setEnvString("STOREFRONT_MAIL_USERNAME", &cfg.Mail.Username)
	setEnvString("STOREFRONT_MAIL_PASSWORD", &cfg.Mail.Password)
	setEnvString("STOREFRONT_MAIL_FROM", &cfg.Mail.From)

	setEnvInt("STOREFRONT_WORKER_POOL_SIZE", &cfg.Worker.PoolSize)
}

func setEnvString(name string, val *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func setEnvBool(name string, val *bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*val = b
		}
	}
}
