package configloader

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the value-source HTTP server settings.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	PublicURL           string   `yaml:"publicURL"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int      `yaml:"idleTimeoutSeconds"`
	CORSAllowOrigins    []string `yaml:"corsAllowOrigins"`
	EnablePprof         bool     `yaml:"enablePprof"`
	EnableSwagger       bool     `yaml:"enableSwagger"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ChainConfig holds RPC settings.
type ChainConfig struct {
	ChainID                  uint64   `yaml:"chainID"`
	RPCURL                   string   `yaml:"rpcURL"`
	FallbackRPCURLs          []string `yaml:"fallbackRpcURLs"`
	ConnectionTimeoutSeconds int      `yaml:"connectionTimeoutSeconds"`
	RPCCallTimeoutSeconds    int      `yaml:"rpcCallTimeoutSeconds"`
	TxTimeoutSeconds         int      `yaml:"txTimeoutSeconds"`
	RateLimit                float64  `yaml:"rateLimit"`
	RateBurst                int      `yaml:"rateBurst"`
}

// AaveConfig holds lending pool addresses.
type AaveConfig struct {
	PoolAddress      string `yaml:"poolAddress"`
	PoolDataProvider string `yaml:"poolDataProvider"`
	WETHAddress      string `yaml:"wethAddress"`
}

// MonitorConfig holds the monitored position and risk boundaries.
type MonitorConfig struct {
	UserAddress           string  `yaml:"userAddress"`
	HealthFactorThreshold float64 `yaml:"healthFactorThreshold"`
	ClassificationMargin  float64 `yaml:"classificationMargin"`
	VerifySettleSeconds   int     `yaml:"verifySettleSeconds"`
}

// TriggerXConfig holds scheduler settings and job parameters.
type TriggerXConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"-"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	ProbeTimeoutMillis   int64   `yaml:"probeTimeoutMillis"`
	UpperLimit           float64 `yaml:"upperLimit"`
	TopUpAmount          string  `yaml:"topUpAmount"`
	JobDurationSeconds   int     `yaml:"jobDurationSeconds"`
	Recurring            bool    `yaml:"recurring"`
}

// SafeConfig holds Safe wallet settings.
type SafeConfig struct {
	WalletAddress  string `yaml:"walletAddress"`
	FactoryAddress string `yaml:"factoryAddress"`
	AddressFile    string `yaml:"addressFile"`
}

// Config is the top-level configuration. It is immutable after Load.
type Config struct {
	Server     ServerConfig   `yaml:"server"`
	Logging    LoggingConfig  `yaml:"logging"`
	Chain      ChainConfig    `yaml:"chain"`
	Aave       AaveConfig     `yaml:"aave"`
	Monitor    MonitorConfig  `yaml:"monitor"`
	TriggerX   TriggerXConfig `yaml:"triggerx"`
	Safe       SafeConfig     `yaml:"safe"`
	PrivateKey string         `yaml:"-"`
}

// Load reads the YAML file (if present), overlays .env and process environment and applies defaults.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

// LoadWithEnvFile is Load with an explicit dotenv path. An empty envFile skips dotenv loading.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logrus.Warnf("Config file %s not found, using environment and defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
			}
			logrus.Infof("Loaded configuration from %s", path)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	setString(&cfg.PrivateKey, "PRIVATE_KEY")
	setString(&cfg.TriggerX.APIKey, "TRIGGERX_API_KEY")
	setString(&cfg.TriggerX.BaseURL, "TRIGGERX_BASE_URL")
	setString(&cfg.Chain.RPCURL, "SEPOLIA_RPC_URL", "RPC_URL")
	setString(&cfg.Monitor.UserAddress, "USER_ADDRESS")
	setString(&cfg.Aave.PoolAddress, "AAVE_POOL_ADDRESS")
	setString(&cfg.Aave.PoolDataProvider, "AAVE_POOL_DATA_PROVIDER")
	setString(&cfg.Aave.WETHAddress, "WETH_ADDRESS")
	setString(&cfg.Safe.WalletAddress, "SAFE_WALLET_ADDRESS")
	setString(&cfg.Safe.FactoryAddress, "SAFE_FACTORY_ADDRESS")
	setString(&cfg.Server.PublicURL, "PUBLIC_URL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("CHAIN_ID")); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CHAIN_ID %q is not a number", entity.ErrConfiguration, v)
		}
		cfg.Chain.ChainID = id
	}
	if v := strings.TrimSpace(os.Getenv("HEALTH_FACTOR_THRESHOLD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: HEALTH_FACTOR_THRESHOLD %q is not a number", entity.ErrConfiguration, v)
		}
		cfg.Monitor.HealthFactorThreshold = f
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":3000"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	// POST /verify-execution holds the connection for the settle delay.
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Chain.ChainID == 0 {
		cfg.Chain.ChainID = 11155111
		logrus.Infof("Chain.ChainID not set, defaulting to %d (Sepolia)", cfg.Chain.ChainID)
	}
	if cfg.Chain.ConnectionTimeoutSeconds <= 0 {
		cfg.Chain.ConnectionTimeoutSeconds = 10
	}
	if cfg.Chain.RPCCallTimeoutSeconds <= 0 {
		cfg.Chain.RPCCallTimeoutSeconds = 10
		logrus.Infof("Chain.RPCCallTimeoutSeconds not set, defaulting to %d", cfg.Chain.RPCCallTimeoutSeconds)
	}
	if cfg.Chain.TxTimeoutSeconds <= 0 {
		cfg.Chain.TxTimeoutSeconds = 120
	}
	if cfg.Chain.RateLimit <= 0 {
		cfg.Chain.RateLimit = 10
	}
	if cfg.Chain.RateBurst <= 0 {
		cfg.Chain.RateBurst = 5
	}

	if cfg.Monitor.HealthFactorThreshold <= 0 {
		cfg.Monitor.HealthFactorThreshold = 1.2
		logrus.Infof("Monitor.HealthFactorThreshold not set, defaulting to %.2f", cfg.Monitor.HealthFactorThreshold)
	}
	if cfg.Monitor.ClassificationMargin <= 0 {
		cfg.Monitor.ClassificationMargin = 0.3
	}
	if cfg.Monitor.VerifySettleSeconds <= 0 {
		cfg.Monitor.VerifySettleSeconds = 5
	}

	if cfg.TriggerX.BaseURL == "" {
		cfg.TriggerX.BaseURL = "https://data.triggerx.network"
		logrus.Infof("TriggerX.BaseURL not set, defaulting to %s", cfg.TriggerX.BaseURL)
	}
	cfg.TriggerX.BaseURL = strings.TrimRight(cfg.TriggerX.BaseURL, "/")
	if cfg.TriggerX.RequestTimeoutMillis <= 0 {
		cfg.TriggerX.RequestTimeoutMillis = 15000
	}
	if cfg.TriggerX.ProbeTimeoutMillis <= 0 {
		cfg.TriggerX.ProbeTimeoutMillis = 6000
	}
	if cfg.TriggerX.UpperLimit <= 0 {
		cfg.TriggerX.UpperLimit = 10
	}
	if cfg.TriggerX.TopUpAmount == "" {
		cfg.TriggerX.TopUpAmount = "10000000000000000"
		logrus.Infof("TriggerX.TopUpAmount not set, defaulting to %s wei", cfg.TriggerX.TopUpAmount)
	}
	if cfg.TriggerX.JobDurationSeconds <= 0 {
		cfg.TriggerX.JobDurationSeconds = 300
	}

	if cfg.Safe.AddressFile == "" {
		cfg.Safe.AddressFile = "data/safe_wallet.txt"
	}
}

// ApplyNetwork fills unset chain and pool settings from a built-in deployment.
func (c *Config) ApplyNetwork(def entity.NetworkDefinition) {
	if c.Chain.RPCURL == "" {
		c.Chain.RPCURL = def.PrimaryRPCURL
		logrus.Infof("Chain.RPCURL not set, using %s default %s", def.Name, c.Chain.RPCURL)
	}
	if len(c.Chain.FallbackRPCURLs) == 0 {
		c.Chain.FallbackRPCURLs = def.FallbackRPCURLs
	}
	if c.Aave.PoolAddress == "" {
		c.Aave.PoolAddress = def.PoolAddress
		logrus.Infof("Aave.PoolAddress not set, using %s default %s", def.Name, c.Aave.PoolAddress)
	}
	if c.Aave.PoolDataProvider == "" {
		c.Aave.PoolDataProvider = def.PoolDataProvider
	}
	if c.Aave.WETHAddress == "" {
		c.Aave.WETHAddress = def.WETHAddress
		logrus.Infof("Aave.WETHAddress not set, using %s default %s", def.Name, c.Aave.WETHAddress)
	}
}

// Requirement names a group of settings an operation needs.
type Requirement int

const (
	RequireMonitor Requirement = iota
	RequireSigner
	RequireScheduler
	RequirePublicURL
	RequireSafeFactory
)

var privateKeyPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// Validate checks the settings behind each requirement and reports all problems at once.
func (c *Config) Validate(reqs ...Requirement) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{entity.ErrConfiguration}, args...)...))
	}
	checkAddress := func(name, value string, required bool) {
		if value == "" {
			if required {
				fail("%s is required", name)
			}
			return
		}
		if _, err := utils.ParseAddress(value); err != nil {
			fail("%s: %v", name, err)
		}
	}

	if c.Monitor.HealthFactorThreshold <= 1 {
		fail("healthFactorThreshold must be above 1.0, got %v", c.Monitor.HealthFactorThreshold)
	}
	if c.TriggerX.UpperLimit <= c.Monitor.HealthFactorThreshold {
		fail("triggerx.upperLimit (%v) must exceed the threshold (%v)", c.TriggerX.UpperLimit, c.Monitor.HealthFactorThreshold)
	}
	if _, err := utils.ParseBaseUnits(c.TriggerX.TopUpAmount); err != nil {
		fail("triggerx.topUpAmount: %v", err)
	}
	checkAddress("SAFE_WALLET_ADDRESS", c.Safe.WalletAddress, false)

	for _, r := range reqs {
		switch r {
		case RequireMonitor:
			if c.Chain.RPCURL == "" {
				fail("RPC URL is required (SEPOLIA_RPC_URL)")
			}
			checkAddress("AAVE_POOL_ADDRESS", c.Aave.PoolAddress, true)
			checkAddress("USER_ADDRESS", c.Monitor.UserAddress, true)
		case RequireSigner:
			if !privateKeyPattern.MatchString(c.PrivateKey) {
				fail("PRIVATE_KEY must be 32 bytes of hex")
			}
		case RequireScheduler:
			if c.TriggerX.APIKey == "" {
				fail("TRIGGERX_API_KEY is required")
			}
			checkAddress("WETH_ADDRESS", c.Aave.WETHAddress, true)
		case RequirePublicURL:
			if c.Server.PublicURL == "" {
				fail("PUBLIC_URL is required")
			} else if u, err := url.Parse(c.Server.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
				fail("PUBLIC_URL %q is not an absolute URL", c.Server.PublicURL)
			}
		case RequireSafeFactory:
			checkAddress("SAFE_FACTORY_ADDRESS", c.Safe.FactoryAddress, true)
		}
	}
	return errors.Join(errs...)
}

// Threshold returns the risk threshold as a decimal.
func (c *Config) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(c.Monitor.HealthFactorThreshold)
}

// RiskPolicy builds the evaluator policy from the monitor settings.
func (c *Config) RiskPolicy() entity.RiskPolicy {
	policy := entity.NewRiskPolicy(c.Threshold())
	policy.Margin = decimal.NewFromFloat(c.Monitor.ClassificationMargin)
	return policy
}

func (c *Config) RPCCallTimeout() time.Duration {
	return time.Duration(c.Chain.RPCCallTimeoutSeconds) * time.Second
}

func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.Chain.ConnectionTimeoutSeconds) * time.Second
}

func (c *Config) TxTimeout() time.Duration {
	return time.Duration(c.Chain.TxTimeoutSeconds) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Monitor.VerifySettleSeconds) * time.Second
}

func (c *Config) SchedulerTimeout() time.Duration {
	return time.Duration(c.TriggerX.RequestTimeoutMillis) * time.Millisecond
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.TriggerX.ProbeTimeoutMillis) * time.Millisecond
}

func (c *Config) JobDuration() time.Duration {
	return time.Duration(c.TriggerX.JobDurationSeconds) * time.Second
}

// RPCURLs returns the primary RPC URL followed by fallbacks.
func (c *Config) RPCURLs() []string {
	urls := make([]string, 0, 1+len(c.Chain.FallbackRPCURLs))
	if c.Chain.RPCURL != "" {
		urls = append(urls, c.Chain.RPCURL)
	}
	for _, u := range c.Chain.FallbackRPCURLs {
		if u != "" && u != c.Chain.RPCURL {
			urls = append(urls, u)
		}
	}
	return urls
}
