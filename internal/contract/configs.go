package contract

import (
	"fmt"
	"maps"
	"math"
	"os"
	"strings"
	"time"

	"github.com/huangsam/mlscore/schema"
	"github.com/shopspring/decimal"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	DefaultWorkers   = 4
	DefaultLimit     = 50
	MaxLimit         = 1000
	DefaultRetries   = 2
	DefaultRateLimit = 5.0 // outbound requests per second
	DefaultListen    = ":8080"
	DefaultLogLevel  = "warn"
)

// Default durations for configuration.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 24 * time.Hour
)

// WeightSumTolerance is how far a validated weight table may drift from 1.0.
const WeightSumTolerance = 0.001

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// WeightsRawInput holds custom dimension weights from the YAML config file.
// Use float64 pointers so only overridden dimensions are set.
type WeightsRawInput struct {
	License           *float64 `mapstructure:"license"`
	BusFactor         *float64 `mapstructure:"bus_factor"`
	CodeQuality       *float64 `mapstructure:"code_quality"`
	DatasetQuality    *float64 `mapstructure:"dataset_quality"`
	DatasetAndCode    *float64 `mapstructure:"dataset_and_code"`
	PerformanceClaims *float64 `mapstructure:"performance_claims"`
	RampUpTime        *float64 `mapstructure:"ramp_up_time"`
	Size              *float64 `mapstructure:"size_score"`
}

// DevicesRawInput holds custom device memory limits in MB from the YAML config file.
type DevicesRawInput struct {
	RaspberryPi *float64 `mapstructure:"raspberry_pi"`
	JetsonNano  *float64 `mapstructure:"jetson_nano"`
	DesktopPC   *float64 `mapstructure:"desktop_pc"`
	AWSServer   *float64 `mapstructure:"aws_server"`
}

// Config holds the runtime configuration for scoring.
// This struct remains the "final, validated" config.
type Config struct {
	URLs       []string
	Workers    int
	Limit      int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	Timeout     time.Duration
	Retries     int
	RateLimit   float64
	GitHubToken string // Please use env var as this is plaintext
	HFToken     string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Listen string

	ValidateWeights bool

	// CustomWeights holds only the dimensions overridden by the config file
	CustomWeights map[schema.Dimension]float64

	// Weights is the final weight table, computed from defaults + custom overrides
	Weights map[schema.Dimension]decimal.Decimal

	// DeviceLimits is the final memory budget in MB of each device tier
	DeviceLimits map[schema.DeviceTier]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	URLArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	Precision      int     `mapstructure:"precision"`
	Width          int     `mapstructure:"width"`
	Color          string  `mapstructure:"color"`
	LogLevel       string  `mapstructure:"log-level"`
	Timeout        string  `mapstructure:"timeout"`
	Retries        int     `mapstructure:"retries"`
	RateLimit      float64 `mapstructure:"rate-limit"`
	GitHubToken    string  `mapstructure:"github-token"`
	HFToken        string  `mapstructure:"hf-token"`
	CacheBackend   string  `mapstructure:"cache-backend"`
	CacheDBConnect string  `mapstructure:"cache-db-connect"`
	CacheTTL       string  `mapstructure:"cache-ttl"`
	StoreBackend   string  `mapstructure:"store-backend"`
	StoreDBConnect string  `mapstructure:"store-db-connect"`

	// --- Fields from scoreCmd.Flags() ---
	URLFile string `mapstructure:"url-file"`
	Workers int    `mapstructure:"workers"`

	// --- Fields from artifactsCmd.PersistentFlags() ---
	Limit int `mapstructure:"limit"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`

	// --- Weights and devices from config file ---
	ValidateWeights bool            `mapstructure:"validate-weights"`
	Weights         WeightsRawInput `mapstructure:"weights"`
	Devices         DevicesRawInput `mapstructure:"devices"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.URLs != nil {
		clone.URLs = make([]string, len(c.URLs))
		copy(clone.URLs, c.URLs)
	}
	if c.CustomWeights != nil {
		clone.CustomWeights = maps.Clone(c.CustomWeights)
	}
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	if c.DeviceLimits != nil {
		clone.DeviceLimits = maps.Clone(c.DeviceLimits)
	}
	return &clone
}

// ConfigParams returns the settings recorded alongside a scoring run.
func (c *Config) ConfigParams() map[string]any {
	weights := make(map[string]string, len(c.Weights))
	for dim, w := range c.Weights {
		weights[string(dim)] = w.String()
	}
	devices := make(map[string]float64, len(c.DeviceLimits))
	for tier, limit := range c.DeviceLimits {
		devices[string(tier)] = limit
	}
	return map[string]any{
		"urls":          len(c.URLs),
		"workers":       c.Workers,
		"timeout":       c.Timeout.String(),
		"cache_backend": string(c.CacheBackend),
		"weights":       weights,
		"devices":       devices,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct. Errors carry CodeConfig.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions now read from 'input' and populate 'cfg'.
	steps := []func(*Config, *ConfigRawInput) error{
		validateSimpleInputs,
		processDurations,
		validateBackendConfigs,
		processCustomWeights,
		processDeviceLimits,
		processURLInputs,
	}
	for _, step := range steps {
		if err := step(cfg, input); err != nil {
			return WrapError(CodeConfig, err, "invalid configuration")
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, ":") {
			return fmt.Errorf("redis connection string must be host:port or a redis:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// Validate that cache and store use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.StoreBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		storeDBPath := cfg.StoreDBConnect
		if storeDBPath == "" {
			storeDBPath = GetStoreDBFilePath()
		}
		if cacheDBPath == storeDBPath {
			return fmt.Errorf("cache and store must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)
	cfg.HFToken = strings.TrimSpace(input.HFToken)
	cfg.LogLevel = input.LogLevel
	cfg.ValidateWeights = input.ValidateWeights
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Limit Validation ---
	if input.Limit <= 0 || input.Limit > MaxLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, ndjson, parquet", input.Output)
	}

	// --- 4. Harvest client settings ---
	if input.Retries < 0 {
		return fmt.Errorf("retries cannot be negative (received %d)", input.Retries)
	}
	cfg.Retries = input.Retries
	if input.RateLimit < 0 {
		return fmt.Errorf("rate-limit cannot be negative (received %.2f)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit

	return nil
}

// processDurations parses the timeout and cache TTL.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = d
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		d, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if d < 0 {
			return fmt.Errorf("cache-ttl cannot be negative (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = d
	}
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a map of the overridden weights.
// Negative weights are always rejected.
func ProcessWeightsRawInput(weights WeightsRawInput) (map[schema.Dimension]float64, error) {
	raw := map[schema.Dimension]*float64{
		schema.LicenseDim:           weights.License,
		schema.BusFactorDim:         weights.BusFactor,
		schema.CodeQualityDim:       weights.CodeQuality,
		schema.DatasetQualityDim:    weights.DatasetQuality,
		schema.DatasetAndCodeDim:    weights.DatasetAndCode,
		schema.PerformanceClaimsDim: weights.PerformanceClaims,
		schema.RampUpTimeDim:        weights.RampUpTime,
		schema.SizeDim:              weights.Size,
	}

	result := make(map[schema.Dimension]float64)
	for _, dim := range schema.AllDimensions {
		w := raw[dim]
		if w == nil {
			continue
		}
		if *w < 0 || math.IsNaN(*w) || math.IsInf(*w, 0) {
			return nil, fmt.Errorf("weight for dimension %s must be a non-negative number, got %v", dim, *w)
		}
		result[dim] = *w
	}
	return result, nil
}

// ComputeWeights merges custom weights over the defaults and converts them to decimals.
// If validateSum is true, it validates that the final table sums to 1.0.
func ComputeWeights(custom map[schema.Dimension]float64, validateSum bool) (map[schema.Dimension]decimal.Decimal, error) {
	merged := schema.GetDefaultWeights()
	maps.Copy(merged, custom)

	result := make(map[schema.Dimension]decimal.Decimal, len(merged))
	sum := decimal.Zero
	for _, dim := range schema.AllDimensions {
		w := decimal.NewFromFloat(merged[dim])
		result[dim] = w
		sum = sum.Add(w)
	}

	if validateSum {
		drift, _ := sum.Sub(decimal.NewFromInt(1)).Abs().Float64()
		if drift > WeightSumTolerance {
			total, _ := sum.Float64()
			return nil, fmt.Errorf("weights must sum to 1.0, got %.3f", total)
		}
	}
	return result, nil
}

// processCustomWeights validates the configured weights and computes the final table.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	custom, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomWeights = custom

	weights, err := ComputeWeights(custom, cfg.ValidateWeights)
	if err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processDeviceLimits merges custom device limits over the defaults.
func processDeviceLimits(cfg *Config, input *ConfigRawInput) error {
	limits := schema.GetDefaultDeviceLimits()
	overrides := map[schema.DeviceTier]*float64{
		schema.RaspberryPi: input.Devices.RaspberryPi,
		schema.JetsonNano:  input.Devices.JetsonNano,
		schema.DesktopPC:   input.Devices.DesktopPC,
		schema.AWSServer:   input.Devices.AWSServer,
	}
	for tier, v := range overrides {
		if v == nil {
			continue
		}
		if *v <= 0 {
			return fmt.Errorf("device limit for %s must be positive, got %v", tier, *v)
		}
		limits[tier] = *v
	}

	// Tiers must stay ascending
	for i := 1; i < len(schema.AllDevices); i++ {
		prev, cur := schema.AllDevices[i-1], schema.AllDevices[i]
		if limits[cur] < limits[prev] {
			return fmt.Errorf("device limit for %s (%.0f MB) cannot be below %s (%.0f MB)", cur, limits[cur], prev, limits[prev])
		}
	}
	cfg.DeviceLimits = limits
	return nil
}

// processURLInputs collects URLs from positional args and the optional URL file.
func processURLInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.URLs = nil
	for _, u := range input.URLArgs {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			cfg.URLs = append(cfg.URLs, trimmed)
		}
	}
	if input.URLFile == "" {
		return nil
	}

	f, err := os.Open(input.URLFile)
	if err != nil {
		return fmt.Errorf("cannot open url file: %w", err)
	}
	defer func() { _ = f.Close() }()

	urls, err := ReadURLList(f)
	if err != nil {
		return err
	}
	cfg.URLs = append(cfg.URLs, urls...)
	return nil
}
