package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `env-default:"local" yaml:"env"`                          // Env is the current environment: local, dev, prod.
	Postgres PostgresConfig `                    yaml:"postgres" env-required:"true"` // Postgres holds the database configuration
	HTTP     HTTPConfig     `                    yaml:"http"`                         // HTTP holds the API and monitoring listeners
	Auth     AuthConfig     `                    yaml:"auth"     env-required:"true"` // Auth holds the identity provider settings
	Storage  StorageConfig  `                    yaml:"storage"`                      // Storage holds the file storage settings
	Report   ReportConfig   `                    yaml:"report"`                       // Report holds the employee report defaults
	Features Features       `                    yaml:"features"`                     // Features are the switches read once at start-up
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Dbname   string `yaml:"db_name"`                     // Dbname is the name of the database.
}

// HTTPConfig struct holds the listeners and limits of the HTTP servers.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"             env-default:":8080"` // Addr is the API listen address.
	MonitoringAddr  string        `yaml:"monitoring_addr"  env-default:":9090"` // MonitoringAddr serves /healthz and /metrics.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`   // ShutdownTimeout bounds graceful shutdown.
	RateLimit       float64       `yaml:"rate_limit"       env-default:"20"`    // RateLimit is requests per second per client IP.
	RateBurst       int           `yaml:"rate_burst"       env-default:"40"`    // RateBurst is the burst size of the limiter.
}

// AuthConfig struct holds the settings to verify identity provider tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // JWTSecret is the HS256 key shared with the identity provider.
	Issuer    string `yaml:"issuer"`     // Issuer is the expected `iss` claim and the health checked URL.
}

// StorageConfig struct holds the file storage settings.
type StorageConfig struct {
	Root          string        `yaml:"root"            env-default:"./data/files"` // Root is the local directory for stored files.
	PublicURL     string        `yaml:"public_url"`                                 // PublicURL prefixes signed download links.
	SigningSecret string        `yaml:"signing_secret"`                             // SigningSecret signs download links.
	URLTTL        time.Duration `yaml:"url_ttl"         env-default:"15m"`          // URLTTL is the lifetime of a signed link.
	MaxUploadSize int64         `yaml:"max_upload_size" env-default:"20971520"`     // MaxUploadSize is the upload limit in bytes.
}

// ReportConfig struct holds report defaults.
type ReportConfig struct {
	DefaultTimezone string `yaml:"default_timezone" env-default:"Asia/Ho_Chi_Minh"` // DefaultTimezone applies when a request names none.
}

// Features are the product switches. They are read once and passed to whatever needs them.
type Features struct {
	WorkerUploads     bool `yaml:"worker_uploads"`     // WorkerUploads lets assigned workers attach files.
	PlaceholderEmails bool `yaml:"placeholder_emails"` // PlaceholderEmails fills missing employee emails.
}

const (
	defaultMaxUpload = 20 << 20
	envPrefix        = "AEOLUS"
)

// MustLoad loads the configuration from the YAML file named by CONFIG_PATH, if any, and from
// AEOLUS_* environment variables, which take precedence. A .env file in the working directory is
// loaded first.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	v.SetDefault("env", "local")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.monitoring_addr", ":9090")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.rate_limit", 20)
	v.SetDefault("http.rate_burst", 40)
	v.SetDefault("storage.root", "./data/files")
	v.SetDefault("storage.url_ttl", "15m")
	v.SetDefault("storage.max_upload_size", defaultMaxUpload)
	v.SetDefault("report.default_timezone", "Asia/Ho_Chi_Minh")

	cfg := &Config{
		Env: v.GetString("env"),
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Dbname:   v.GetString("postgres.db_name"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			MonitoringAddr:  v.GetString("http.monitoring_addr"),
			ShutdownTimeout: mustDuration(v, "http.shutdown_timeout"),
			RateLimit:       v.GetFloat64("http.rate_limit"),
			RateBurst:       v.GetInt("http.rate_burst"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Storage: StorageConfig{
			Root:          v.GetString("storage.root"),
			PublicURL:     v.GetString("storage.public_url"),
			SigningSecret: v.GetString("storage.signing_secret"),
			URLTTL:        mustDuration(v, "storage.url_ttl"),
			MaxUploadSize: v.GetInt64("storage.max_upload_size"),
		},
		Report: ReportConfig{
			DefaultTimezone: v.GetString("report.default_timezone"),
		},
		Features: Features{
			WorkerUploads:     v.GetBool("features.worker_uploads"),
			PlaceholderEmails: v.GetBool("features.placeholder_emails"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		panic("auth.jwt_secret is required")
	}
	if cfg.Storage.SigningSecret == "" {
		panic("storage.signing_secret is required")
	}
	// download tokens must never verify as identity tokens.
	if cfg.Storage.SigningSecret == cfg.Auth.JWTSecret {
		panic("storage.signing_secret must differ from auth.jwt_secret")
	}
	if _, err := time.LoadLocation(cfg.Report.DefaultTimezone); err != nil {
		panic("invalid report.default_timezone: " + cfg.Report.DefaultTimezone)
	}

	return cfg
}

func mustDuration(v *viper.Viper, key string) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		panic("failed to parse " + key + " from configuration")
	}
	return d
}
