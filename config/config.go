package config

import (
	"time"

	ct "github.com/launchdarkly/go-configtypes"
)

const (
	// DefaultEnvironment is the value of MainConfig.Environment if not specified.
	DefaultEnvironment = "default"

	// DefaultHeaderName is the header that carries the client key if MainConfig.HeaderName is not specified.
	DefaultHeaderName = "Authorization"

	// DefaultRefreshInterval is the default value for RefreshConfig.Interval.
	DefaultRefreshInterval = time.Second * 30

	// DefaultMetricsInterval is the default value for MetricsConfig.Interval.
	DefaultMetricsInterval = time.Second * 30

	// DefaultMetricsIntervalInitial is the default value for MetricsConfig.IntervalInitial.
	DefaultMetricsIntervalInitial = time.Second * 2

	// DefaultStoragePrefix is the default key prefix for the Redis, Consul and DynamoDB storage providers.
	DefaultStoragePrefix = "unleash:repository"

	// DefaultDynamoDBTableName is the default value for DynamoDBConfig.TableName.
	DefaultDynamoDBTableName = "unleash"

	// DefaultServerPort is the default port for the status server of the command-line application.
	DefaultServerPort = 4243

	// DefaultPrometheusPort is the default value for PrometheusConfig.Port if not specified.
	DefaultPrometheusPort = 8031
)

// Config describes the configuration for a client instance.
//
// Each field corresponds to a section of the configuration file, except for TelemetryConfig whose
// sections are the structs within it (Prometheus, Datadog).
//
// If you are configuring the client programmatically, only Main.URL, Main.ClientKey and Main.AppName are
// required; every other field has a usable zero value.
type Config struct {
	Main      MainConfig
	Refresh   RefreshConfig
	Metrics   MetricsConfig
	Bootstrap BootstrapConfig
	Context   ContextConfig
	File      FileConfig
	Redis     RedisConfig
	Consul    ConsulConfig
	DynamoDB  DynamoDBConfig
	Proxy     ProxyConfig
	Server    ServerConfig
	TelemetryConfig
}

// MainConfig contains the connection and evaluation options.
//
// This corresponds to the [Main] section in the configuration file.
type MainConfig struct {
	URL               ct.OptURLAbsolute `conf:"UNLEASH_URL"`
	ClientKey         string            `conf:"UNLEASH_CLIENT_KEY"`
	AppName           string            `conf:"UNLEASH_APP_NAME"`
	Environment       string            `conf:"UNLEASH_ENVIRONMENT"`
	HeaderName        string            `conf:"UNLEASH_HEADER_NAME"`
	CustomHeaders     ct.OptStringList  `conf:"UNLEASH_CUSTOM_HEADERS"`
	UsePOSTRequests   bool              `conf:"UNLEASH_USE_POST_REQUESTS"`
	ImpressionDataAll bool              `conf:"UNLEASH_IMPRESSION_DATA_ALL"`
	MaxResponseSize   ct.OptBase2Bytes  `conf:"UNLEASH_MAX_RESPONSE_SIZE"`
	LogLevel          OptLogLevel       `conf:"LOG_LEVEL"`
}

// RefreshConfig controls polling of the toggle endpoint.
//
// An Interval of zero disables the refresh timer, as does Disabled. TogglesStorageTTL enables the
// startup short-circuit: if the stored toggles were fetched for the same context less than this long
// ago, the initial fetch is skipped.
type RefreshConfig struct {
	Disabled          bool           `conf:"DISABLE_REFRESH"`
	Interval          ct.OptDuration `conf:"REFRESH_INTERVAL"`
	TogglesStorageTTL ct.OptDuration `conf:"TOGGLES_STORAGE_TTL"`
}

// MetricsConfig controls the usage metrics sent to the proxy.
type MetricsConfig struct {
	Disabled        bool           `conf:"DISABLE_METRICS"`
	Interval        ct.OptDuration `conf:"METRICS_INTERVAL"`
	IntervalInitial ct.OptDuration `conf:"METRICS_INTERVAL_INITIAL"`
}

// BootstrapConfig describes an initial toggle set. File is a JSON array of toggles, read by the
// command-line application. Override defaults to true.
type BootstrapConfig struct {
	File     string    `conf:"BOOTSTRAP_FILE"`
	Override ct.OptBool `conf:"BOOTSTRAP_OVERRIDE"`
}

// ContextConfig sets the initial mutable context. Properties are "name=value" pairs. File is a JSON
// context document that the command-line application watches and applies whenever it changes.
type ContextConfig struct {
	UserID        string           `conf:"CONTEXT_USER_ID"`
	SessionID     string           `conf:"CONTEXT_SESSION_ID"`
	RemoteAddress string           `conf:"CONTEXT_REMOTE_ADDRESS"`
	Properties    ct.OptStringList `conf:"CONTEXT_PROPERTIES"`
	File          string           `conf:"CONTEXT_FILE"`
}

// FileConfig configures the file storage provider, which is used if Dir is non-empty.
type FileConfig struct {
	Dir string `conf:"FILE_STORAGE_DIR"`
}

// RedisConfig configures the Redis storage provider, which is used if URL is set.
type RedisConfig struct {
	URL      ct.OptURLAbsolute `conf:"REDIS_URL"`
	Password string            `conf:"REDIS_PASSWORD"`
	TLS      bool              `conf:"REDIS_TLS"`
	Prefix   string            `conf:"REDIS_PREFIX"`
}

// ConsulConfig configures the Consul storage provider, which is used if Host is non-empty.
type ConsulConfig struct {
	Host   string `conf:"CONSUL_HOST"`
	Token  string `conf:"CONSUL_TOKEN"`
	Prefix string `conf:"CONSUL_PREFIX"`
}

// DynamoDBConfig configures the DynamoDB storage provider, which is used only if Enabled is true.
//
// If AccessKeyID is empty, credentials come from the default AWS provider chain.
type DynamoDBConfig struct {
	Enabled         bool              `conf:"USE_DYNAMODB"`
	TableName       string            `conf:"DYNAMODB_TABLE"`
	URL             ct.OptURLAbsolute `conf:"DYNAMODB_URL"`
	Region          string            `conf:"DYNAMODB_REGION"`
	Prefix          string            `conf:"DYNAMODB_PREFIX"`
	AccessKeyID     string            `conf:"DYNAMODB_ACCESS_KEY_ID"`
	SecretAccessKey string            `conf:"DYNAMODB_SECRET_ACCESS_KEY"`
}

// ProxyConfig represents all the supported proxy options for outbound HTTP requests.
type ProxyConfig struct {
	URL            ct.OptURLAbsolute `conf:"PROXY_URL"`
	User           string            `conf:"PROXY_AUTH_USER"`
	Password       string            `conf:"PROXY_AUTH_PASSWORD"`
	CACertFiles    ct.OptStringList  `conf:"PROXY_CA_CERTS"`
	RequestTimeout ct.OptDuration    `conf:"HTTP_TIMEOUT"`
}

// ServerConfig configures the status server of the command-line application.
type ServerConfig struct {
	Port ct.OptIntGreaterThanZero `conf:"PORT"`
}

// TelemetryConfig contains the configuration for the optional opencensus exporters.
type TelemetryConfig struct {
	Datadog    DatadogConfig
	Prometheus PrometheusConfig
}

// CommonTelemetryConfig contains options shared by all exporters.
type CommonTelemetryConfig struct {
	Enabled bool
	Prefix  string
}

// DatadogConfig configures the Datadog exporter.
type DatadogConfig struct {
	TraceAddr string `conf:"DATADOG_TRACE_ADDR"`
	StatsAddr string `conf:"DATADOG_STATS_ADDR"`
	Tag       []string
	CommonTelemetryConfig
}

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	Port ct.OptIntGreaterThanZero `conf:"PROMETHEUS_PORT"`
	CommonTelemetryConfig
}

// DefaultConfig returns a configuration with every default applied explicitly.
func DefaultConfig() Config {
	var c Config
	c.Main.Environment = DefaultEnvironment
	c.Main.HeaderName = DefaultHeaderName
	c.Refresh.Interval = ct.NewOptDuration(DefaultRefreshInterval)
	c.Metrics.Interval = ct.NewOptDuration(DefaultMetricsInterval)
	c.Metrics.IntervalInitial = ct.NewOptDuration(DefaultMetricsIntervalInitial)
	c.Bootstrap.Override = ct.NewOptBool(true)
	return c
}
