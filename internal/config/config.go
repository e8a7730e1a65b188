// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string
	Stock    DatabaseConfig
	Feeds    DatabaseConfig
	Sources  SourcesConfig
	Sales    SalesConfig
	Cache    CacheConfig
}

// DatabaseConfig holds connection parameters for one MySQL database. The
// pipeline opens a short-lived connection per phase, so pool sizing is small
// and timeouts are fixed here rather than per query.
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	Charset        string
	ConnectTimeout int // seconds
	ReadTimeout    int // seconds
}

// SourcesConfig carries the warehouse naming knobs the stock adapters need.
// These were module-level globals in the system this replaces; keeping them
// here makes the pipeline testable with alternate warehouse layouts.
type SourcesConfig struct {
	// RegularWarehouses are the exact warehouse_name values counted as the
	// regular (offline) warehouse in the stock ledger.
	RegularWarehouses []string
	// ExpressWarehousePattern is a SQL LIKE pattern selecting the express
	// fulfillment warehouses in the stock ledger.
	ExpressWarehousePattern string
	// ExcludedNameKeywords drop ledger rows whose product name is a known
	// non-product artifact (freight lines, virtual items, giveaways).
	ExcludedNameKeywords []string
}

// SalesConfig configures the sales-history queries.
type SalesConfig struct {
	Table string
	// StatusColumn is the order-status column of the sales table.
	StatusColumn string
	// NoteDenySubstrings excludes orders whose customer-note contains any of
	// these fragments (known test/non-shippable orders).
	NoteDenySubstrings []string
	// NoteDenyExact excludes orders whose customer-note equals one of these.
	NoteDenyExact []string
	// StatusDenySubstrings excludes orders whose status contains any of
	// these fragments (unpaid, cancelled).
	StatusDenySubstrings []string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("LOG_LEVEL", "info")

		viper.SetDefault("STOCK_DB_HOST", "localhost")
		viper.SetDefault("STOCK_DB_PORT", "3306")
		viper.SetDefault("STOCK_DB_USER", "root")
		viper.SetDefault("STOCK_DB_PASSWORD", "")
		viper.SetDefault("STOCK_DB_NAME", "wdt")

		viper.SetDefault("FEEDS_DB_HOST", "localhost")
		viper.SetDefault("FEEDS_DB_PORT", "3306")
		viper.SetDefault("FEEDS_DB_USER", "root")
		viper.SetDefault("FEEDS_DB_PASSWORD", "")
		viper.SetDefault("FEEDS_DB_NAME", "Date")

		viper.SetDefault("DB_CHARSET", "utf8mb4")
		viper.SetDefault("DB_CONNECT_TIMEOUT_SECONDS", 30)
		viper.SetDefault("DB_READ_TIMEOUT_SECONDS", 300)

		viper.SetDefault("SOURCE_REGULAR_WAREHOUSES", []string{"常规仓"})
		viper.SetDefault("SOURCE_EXPRESS_WAREHOUSE_PATTERN", "%顺丰%")
		viper.SetDefault("SOURCE_EXCLUDED_NAME_KEYWORDS", []string{"运费", "虚拟", "赠品"})

		viper.SetDefault("SALES_TABLE", "Daysales")
		viper.SetDefault("SALES_STATUS_COLUMN", "订单状态")
		viper.SetDefault("SALES_NOTE_DENY_SUBSTRINGS", []string{"抽纸", "纸巾"})
		viper.SetDefault("SALES_NOTE_DENY_EXACT", []string{"不发货"})
		viper.SetDefault("SALES_STATUS_DENY_SUBSTRINGS", []string{"未付款", "已取消"})

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 6*60*60)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			LogLevel: viper.GetString("LOG_LEVEL"),
			Stock: DatabaseConfig{
				Host:           viper.GetString("STOCK_DB_HOST"),
				Port:           viper.GetString("STOCK_DB_PORT"),
				User:           viper.GetString("STOCK_DB_USER"),
				Password:       viper.GetString("STOCK_DB_PASSWORD"),
				DBName:         viper.GetString("STOCK_DB_NAME"),
				Charset:        viper.GetString("DB_CHARSET"),
				ConnectTimeout: viper.GetInt("DB_CONNECT_TIMEOUT_SECONDS"),
				ReadTimeout:    viper.GetInt("DB_READ_TIMEOUT_SECONDS"),
			},
			Feeds: DatabaseConfig{
				Host:           viper.GetString("FEEDS_DB_HOST"),
				Port:           viper.GetString("FEEDS_DB_PORT"),
				User:           viper.GetString("FEEDS_DB_USER"),
				Password:       viper.GetString("FEEDS_DB_PASSWORD"),
				DBName:         viper.GetString("FEEDS_DB_NAME"),
				Charset:        viper.GetString("DB_CHARSET"),
				ConnectTimeout: viper.GetInt("DB_CONNECT_TIMEOUT_SECONDS"),
				ReadTimeout:    viper.GetInt("DB_READ_TIMEOUT_SECONDS"),
			},
			Sources: SourcesConfig{
				RegularWarehouses:       viper.GetStringSlice("SOURCE_REGULAR_WAREHOUSES"),
				ExpressWarehousePattern: viper.GetString("SOURCE_EXPRESS_WAREHOUSE_PATTERN"),
				ExcludedNameKeywords:    viper.GetStringSlice("SOURCE_EXCLUDED_NAME_KEYWORDS"),
			},
			Sales: SalesConfig{
				Table:                viper.GetString("SALES_TABLE"),
				StatusColumn:         viper.GetString("SALES_STATUS_COLUMN"),
				NoteDenySubstrings:   viper.GetStringSlice("SALES_NOTE_DENY_SUBSTRINGS"),
				NoteDenyExact:        viper.GetStringSlice("SALES_NOTE_DENY_EXACT"),
				StatusDenySubstrings: viper.GetStringSlice("SALES_STATUS_DENY_SUBSTRINGS"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
		}
	})

	return instance
}
