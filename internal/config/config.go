package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// background execution, the pipeline components and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" env-default:"info" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// CORSOrigins lists the origins allowed to call the API from a browser
		CORSOrigins []string `env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost:8000" env-separator:"," yaml:"corsOrigins"` //nolint: lll
		// RateLimit is the sustained number of ingest requests per second allowed per client IP, 0 disables it
		RateLimit float64 `env:"HTTP_RATE_LIMIT" env-default:"1" yaml:"rateLimit"`
		// RateBurst is the number of ingest requests a client may burst above RateLimit
		RateBurst int `env:"HTTP_RATE_BURST" env-default:"5" yaml:"rateBurst"`
		// TrustedProxies lists proxy addresses or CIDR ranges whose forwarding headers identify the client
		TrustedProxies []string `env:"HTTP_TRUSTED_PROXIES" env-separator:"," yaml:"trustedProxies"`
		// MaxUploadBytes limits the size of uploaded résumé files
		MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760" yaml:"maxUploadBytes"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"referralflow" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Queue selects where accepted résumés are executed
	Queue struct {
		// Driver is "memory" (detached goroutine in this process) or "river" (durable postgres queue)
		Driver string `env:"QUEUE_DRIVER" env-default:"memory" yaml:"driver"`
		// MaxWorkers is the number of pipeline runs a River worker executes concurrently
		MaxWorkers int `env:"QUEUE_MAX_WORKERS" env-default:"4" yaml:"maxWorkers"`
		// JobTimeout bounds one pipeline run executed by River
		JobTimeout time.Duration `env:"QUEUE_JOB_TIMEOUT" env-default:"15m" yaml:"jobTimeout"`
	} `yaml:"queue"`

	Extractor struct {
		// Provider is "huggingface" or "gemini"
		Provider string `env:"EXTRACTOR_PROVIDER" env-default:"huggingface" yaml:"provider"`
		// URL is the inference endpoint prefix, empty uses the provider default
		URL string `env:"HF_MCP_URL" yaml:"url"`
		// Model is the model ID, empty uses the provider default
		Model string `env:"HF_MODEL_ID" yaml:"model"`
		// Token is the API credential. When empty it is looked up by CredentialAccount.
		Token             string        `env:"HF_MCP_TOKEN" yaml:"token"`
		// CredentialAccount defaults to the provider name
		CredentialAccount string        `env:"EXTRACTOR_CREDENTIAL_ACCOUNT" yaml:"credentialAccount"`
		Timeout           time.Duration `env:"EXTRACTOR_TIMEOUT" env-default:"60s" yaml:"timeout"`
		MaxInputChars     int           `env:"EXTRACTOR_MAX_INPUT_CHARS" env-default:"3000" yaml:"maxInputChars"`
		Retry             Retry         `yaml:"retry" env-prefix:"EXTRACTOR_RETRY_"`
	} `yaml:"extractor"`

	Scraper struct {
		Concurrency       int           `env:"SCRAPER_CONCURRENCY" env-default:"3" yaml:"concurrency"`
		RequestsPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" env-default:"60" yaml:"requestsPerMinute"`
		MinDelay          time.Duration `env:"SCRAPER_MIN_DELAY" env-default:"500ms" yaml:"minDelay"`
		Proxies           []string      `env:"PROXY_LIST" env-separator:"," yaml:"proxies"`
		UserAgent         string        `env:"SCRAPER_USER_AGENT" yaml:"userAgent"`
		Timeout           time.Duration `env:"SCRAPER_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"scraper"`

	// Search controls which listing pages are fetched for a profile
	Search struct {
		BaseURLs  []string `env:"SEARCH_BASE_URLS" env-default:"https://www.linkedin.com/jobs/search/" env-separator:"," yaml:"baseURLs"` //nolint: lll
		Locations []string `env:"SEARCH_LOCATIONS" env-separator:"," yaml:"locations"`
		MaxJobs   int      `env:"SEARCH_MAX_JOBS" env-default:"3" yaml:"maxJobs"`
	} `yaml:"search"`

	Mailer struct {
		Host     string `env:"SMTP_HOST" yaml:"host"`
		Port     int    `env:"SMTP_PORT" env-default:"587" yaml:"port"`
		Username string `env:"SMTP_USER" yaml:"username"`
		// Password is the relay credential. When empty it is looked up by CredentialAccount.
		Password          string        `env:"SMTP_PASSWORD" yaml:"password"`
		From              string        `env:"EMAIL_FROM" yaml:"from"`
		Security          string        `env:"SMTP_SECURITY" env-default:"starttls" yaml:"security"`
		CredentialAccount string        `env:"SMTP_CREDENTIAL_ACCOUNT" yaml:"credentialAccount"`
		LocalName         string        `env:"SMTP_LOCAL_NAME" env-default:"localhost" yaml:"localName"`
		Timeout           time.Duration `env:"SMTP_TIMEOUT" env-default:"30s" yaml:"timeout"`
		Retry             Retry         `yaml:"retry" env-prefix:"SMTP_RETRY_"`

		// Archive stores a copy of each delivered message in an IMAP mailbox when Host is set
		Archive struct {
			Host              string `env:"IMAP_HOST" yaml:"host"`
			Port              int    `env:"IMAP_PORT" env-default:"993" yaml:"port"`
			Username          string `env:"IMAP_USER" yaml:"username"`
			Password          string `env:"IMAP_PASSWORD" yaml:"password"`
			Mailbox           string `env:"IMAP_MAILBOX" env-default:"Sent" yaml:"mailbox"`
			CredentialAccount string `env:"IMAP_CREDENTIAL_ACCOUNT" yaml:"credentialAccount"`
		} `yaml:"archive"`
	} `yaml:"mailer"`

	Templates struct {
		// Dir replaces the embedded templates when set
		Dir     string `env:"TEMPLATES_DIR" yaml:"dir"`
		Subject string `env:"TEMPLATES_SUBJECT" env-default:"application_subject.txt" yaml:"subject"`
		Text    string `env:"TEMPLATES_TEXT" env-default:"application_email.txt" yaml:"text"`
		HTML    string `env:"TEMPLATES_HTML" env-default:"application_email.html" yaml:"html"`
	} `yaml:"templates"`

	// Fallback configures the keyword profile used when extraction fails
	Fallback struct {
		Vocabulary   []string `env:"FALLBACK_VOCABULARY" env-separator:"," yaml:"vocabulary"`
		DefaultSkill string   `env:"FALLBACK_DEFAULT_SKILL" env-default:"General" yaml:"defaultSkill"`
		Position     string   `env:"FALLBACK_POSITION" env-default:"Software Engineer" yaml:"position"`
		Years        string   `env:"FALLBACK_YEARS" env-default:"N/A" yaml:"years"`
	} `yaml:"fallback"`

	Credentials struct {
		// KeyringService is the OS keychain service secrets are stored under, empty disables the keychain
		KeyringService string `env:"CREDENTIALS_KEYRING_SERVICE" yaml:"keyringService"`
		// EncryptionKey seals secrets stored in the database, empty disables database secrets
		EncryptionKey string `env:"ENCRYPTION_KEY" yaml:"encryptionKey"`
	} `yaml:"credentials"`

	JWT struct {
		// PublicKey verifies bearer tokens on the ingest routes, empty disables authentication
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey signs tokens issued by the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests and runs to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"30s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Retry configures an exponential backoff retry policy.
type Retry struct {
	Attempts   int           `env:"ATTEMPTS" env-default:"3" yaml:"attempts"`
	MinBackoff time.Duration `env:"MIN_BACKOFF" env-default:"2s" yaml:"minBackoff"`
	MaxBackoff time.Duration `env:"MAX_BACKOFF" env-default:"10s" yaml:"maxBackoff"`
}

// Load receives the path for yaml config file and returns a filled Config struct.
// Variables from a .env file in the working directory are loaded first; they
// never override variables already set in the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read .env file: %w", err)
	}

	var cfg Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		err = cleanenv.ReadConfig(configPath, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
