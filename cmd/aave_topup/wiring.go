package main

import (
	"context"
	"fmt"
	"math/big"

	"aave_topup/internal/app/port"
	"aave_topup/internal/app/provider"
	"aave_topup/internal/app/service"
	triggerx "aave_topup/internal/client"
	"aave_topup/internal/infrastructure/configloader"
	"aave_topup/internal/infrastructure/httpclient"
	clientprovider "aave_topup/internal/infrastructure/network/client"
	networkdefinition "aave_topup/internal/infrastructure/network/definition"
	"aave_topup/internal/infrastructure/walletloader"
	"aave_topup/internal/pkg/logger"
	"aave_topup/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// runtime holds the collaborators shared by every command.
type runtime struct {
	cfg       *configloader.Config
	zapLogger *zap.Logger
	log       port.Logger

	eth     *ethclient.Client
	user    common.Address
	monitor port.HealthMonitor
	chain   port.ChainInspector
}

// loadConfig reads the config, applies CLI overrides and built-in network defaults, and validates reqs.
func loadConfig(c *cli.Context, reqs ...configloader.Requirement) (*configloader.Config, error) {
	cfg, err := configloader.LoadWithEnvFile(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if u := c.String("public-url"); u != "" {
		cfg.Server.PublicURL = u
	}

	networks := networkdefinition.NewNetworkDefinitionProvider(logger.NewSlogAdapter())
	if def, ok := networks.GetNetworkDefinitionByChainID(cfg.Chain.ChainID); ok {
		cfg.ApplyNetwork(def)
	}

	if err := cfg.Validate(reqs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRuntime loads configuration, initializes logging and connects to the RPC network.
func newRuntime(c *cli.Context, reqs ...configloader.Requirement) (*runtime, error) {
	cfg, err := loadConfig(c, append([]configloader.Requirement{configloader.RequireMonitor}, reqs...)...)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.Init(logger.Options{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewSlogAdapter()

	user, err := utils.ParseAddress(cfg.Monitor.UserAddress)
	if err != nil {
		return nil, err
	}
	pool, err := utils.ParseAddress(cfg.Aave.PoolAddress)
	if err != nil {
		return nil, err
	}

	eth, err := clientprovider.DialWithFallback(c.Context, cfg.RPCURLs(), cfg.Chain.ChainID, cfg.ConnectionTimeout(), appLogger)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.Chain.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Chain.RateLimit), cfg.Chain.RateBurst)
	}

	reader := clientprovider.NewAavePoolClient(eth, pool, cfg.RPCCallTimeout())
	source := service.NewAccountDataSource(reader, limiter, appLogger)
	evaluator := service.NewHealthFactorEvaluator(cfg.RiskPolicy())

	return &runtime{
		cfg:       cfg,
		zapLogger: zapLogger,
		log:       appLogger,
		eth:       eth,
		user:      user,
		monitor:   service.NewHealthMonitor(source, evaluator, appLogger, user),
		chain:     clientprovider.NewChainInspector(eth, cfg.RPCCallTimeout()),
	}, nil
}

func (r *runtime) Close() {
	if r.eth != nil {
		r.eth.Close()
	}
	_ = r.zapLogger.Sync()
}

func (r *runtime) safeStore() port.SafeAddressStore {
	return walletloader.NewSafeAddressFile(r.cfg.Safe.AddressFile, r.log.Info)
}

func (r *runtime) safeCreator() (port.SafeWalletCreator, error) {
	factory, err := utils.ParseAddress(r.cfg.Safe.FactoryAddress)
	if err != nil {
		return nil, err
	}
	return clientprovider.NewSafeFactoryClient(
		r.eth,
		factory,
		r.cfg.PrivateKey,
		new(big.Int).SetUint64(r.cfg.Chain.ChainID),
		r.cfg.TxTimeout(),
		r.log,
	)
}

// owner is the Safe owner: the signer when a private key is configured, else the monitored user.
func (r *runtime) owner() (common.Address, error) {
	if r.cfg.PrivateKey == "" {
		return r.user, nil
	}
	return clientprovider.SignerAddress(r.cfg.PrivateKey)
}

// safeCoordinator adopts the configured or persisted Safe address. With allowCreate it is wired to the
// factory when no address is known, which requires the signer and factory settings.
// known reports whether an address was configured or persisted, so Resolve needs no transaction.
func (r *runtime) safeCoordinator(allowCreate bool) (wallet *service.SafeWalletCoordinator, known bool, err error) {
	store := r.safeStore()
	configured, err := provider.NewSafeAddressProvider(r.cfg.Safe.WalletAddress, store, r.log).ConfiguredSafeAddress()
	if err != nil {
		return nil, false, err
	}

	var creator port.SafeWalletCreator
	if configured == "" && allowCreate {
		if err := r.cfg.Validate(configloader.RequireSigner, configloader.RequireSafeFactory); err != nil {
			return nil, false, fmt.Errorf("no Safe wallet configured or persisted, creating one: %w", err)
		}
		if creator, err = r.safeCreator(); err != nil {
			return nil, false, err
		}
	}

	owner, err := r.owner()
	if err != nil {
		return nil, false, err
	}
	return service.NewSafeWalletCoordinator(configured, owner, creator, r.log).PersistTo(store), configured != "", nil
}

func (r *runtime) scheduler() port.JobScheduler {
	return triggerx.NewTriggerXClient(r.cfg.TriggerX.BaseURL, r.cfg.TriggerX.APIKey, r.cfg.SchedulerTimeout(), r.zapLogger)
}

func (r *runtime) jobRegistrar(wallet *service.SafeWalletCoordinator) (*service.JobRegistrar, error) {
	settings := service.JobSettings{
		ChainID:    r.cfg.Chain.ChainID,
		Threshold:  r.cfg.Threshold(),
		UpperLimit: decimal.NewFromFloat(r.cfg.TriggerX.UpperLimit),
		Duration:   r.cfg.JobDuration(),
		Recurring:  r.cfg.TriggerX.Recurring,
		TargetABI:  clientprovider.AavePoolABI,
	}

	var err error
	if settings.PoolAddress, err = utils.ParseAddress(r.cfg.Aave.PoolAddress); err != nil {
		return nil, err
	}
	if r.cfg.Aave.WETHAddress != "" {
		if settings.WETHAddress, err = utils.ParseAddress(r.cfg.Aave.WETHAddress); err != nil {
			return nil, err
		}
	}
	if settings.TopUpAmount, err = utils.ParseBaseUnits(r.cfg.TriggerX.TopUpAmount); err != nil {
		return nil, fmt.Errorf("triggerx.topUpAmount: %w", err)
	}

	return service.NewJobRegistrar(service.JobRegistrarDeps{
		Wallet:    wallet,
		Scheduler: r.scheduler(),
		Prober:    httpclient.NewValueSourceProber(r.cfg.ProbeTimeout(), r.log),
		Chain:     r.chain,
		Logger:    r.log,
		Settings:  settings,
	}), nil
}

func withTimeout(parent context.Context, r *runtime) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.cfg.TxTimeout()+r.cfg.SchedulerTimeout()+r.cfg.ProbeTimeout())
}
