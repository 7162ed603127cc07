package provider

import (
	"strings"

	"aave_topup/internal/app/port"
)

type safeAddressProviderImpl struct {
	configured string
	store      port.SafeAddressStore
	logger     port.Logger
}

// NewSafeAddressProvider creates a provider preferring configured over the persisted address.
func NewSafeAddressProvider(configured string, store port.SafeAddressStore, logger port.Logger) port.SafeAddressProvider {
	return &safeAddressProviderImpl{
		configured: strings.TrimSpace(configured),
		store:      store,
		logger:     logger,
	}
}

// ConfiguredSafeAddress returns the configured address, else the persisted one, else "".
func (p *safeAddressProviderImpl) ConfiguredSafeAddress() (string, error) {
	if p.configured != "" {
		p.logger.Debug("Using Safe wallet address from configuration", "address", p.configured)
		return p.configured, nil
	}
	if p.store == nil {
		return "", nil
	}

	addr, err := p.store.Load()
	if err != nil {
		p.logger.Error("Failed to load persisted Safe wallet address", "error", err)
		return "", err
	}
	if addr == "" {
		p.logger.Info("No Safe wallet address configured or persisted")
		return "", nil
	}
	p.logger.Info("Using persisted Safe wallet address", "address", addr)
	return addr, nil
}
