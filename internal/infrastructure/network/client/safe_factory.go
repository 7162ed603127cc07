package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SafeFactoryABI is the factory surface used to provision Safe wallets for automation.
const SafeFactoryABI = `[{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"createSafeWallet","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"nonpayable","type":"function"},{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":true,"internalType":"address","name":"safeWallet","type":"address"}],"name":"SafeWalletCreated","type":"event"}]`

const (
	createSafeWalletMethod = "createSafeWallet"
	safeWalletCreatedEvent = "SafeWalletCreated"
)

var (
	parsedSafeFactoryABI  abi.ABI
	parsedSafeFactoryOnce sync.Once
)

func initParsedSafeFactoryABI() {
	parsedSafeFactoryOnce.Do(func() {
		var err error
		parsedSafeFactoryABI, err = abi.JSON(strings.NewReader(SafeFactoryABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse Safe factory ABI: %v", err))
		}
		if _, ok := parsedSafeFactoryABI.Events[safeWalletCreatedEvent]; !ok {
			panic(safeWalletCreatedEvent + " event not found in parsed Safe factory ABI")
		}
	})
}

// SafeFactoryBackend is satisfied by *ethclient.Client.
type SafeFactoryBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// SafeFactoryClient creates Safe wallets through a factory contract, signing with a local key.
type SafeFactoryClient struct {
	backend   SafeFactoryBackend
	factory   common.Address
	key       *ecdsa.PrivateKey
	chainID   *big.Int
	txTimeout time.Duration
	logger    port.Logger
}

// NewSafeFactoryClient parses the signer key and binds the factory.
func NewSafeFactoryClient(backend SafeFactoryBackend, factory common.Address, privateKeyHex string, chainID *big.Int, txTimeout time.Duration, logger port.Logger) (port.SafeWalletCreator, error) {
	initParsedSafeFactoryABI()
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", entity.ErrConfiguration, err)
	}
	return &SafeFactoryClient{
		backend:   backend,
		factory:   factory,
		key:       key,
		chainID:   chainID,
		txTimeout: txTimeout,
		logger:    logger.With("component", "safe_factory", "factory", factory.Hex()),
	}, nil
}

// SignerAddress returns the address derived from a hex private key.
func SignerAddress(privateKeyHex string) (common.Address, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: invalid private key: %v", entity.ErrConfiguration, err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// CreateSafeWallet sends createSafeWallet(owner), waits for the receipt and returns the new wallet address.
func (c *SafeFactoryClient) CreateSafeWallet(ctx context.Context, owner common.Address) (common.Address, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to build transactor: %w", err)
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(c.factory, parsedSafeFactoryABI, c.backend, c.backend, c.backend)
	tx, err := contract.Transact(auth, createSafeWalletMethod, owner)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to send %s: %w", createSafeWalletMethod, err)
	}
	c.logger.Info("Safe wallet creation submitted", "tx", tx.Hash().Hex(), "owner", owner.Hex())

	waitCtx, cancel := context.WithTimeout(ctx, c.txTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("tx %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}

	safe, err := safeAddressFromLogs(receipt.Logs, c.factory)
	if err != nil {
		return common.Address{}, fmt.Errorf("tx %s: %w", tx.Hash().Hex(), err)
	}
	c.logger.Info("Safe wallet created", "safe", safe.Hex(), "block", receipt.BlockNumber.String(), "gas_used", receipt.GasUsed)
	return safe, nil
}

func safeAddressFromLogs(logs []*types.Log, factory common.Address) (common.Address, error) {
	initParsedSafeFactoryABI()
	eventID := parsedSafeFactoryABI.Events[safeWalletCreatedEvent].ID
	for _, l := range logs {
		if l == nil || l.Address != factory || len(l.Topics) < 3 || l.Topics[0] != eventID {
			continue
		}
		return common.BytesToAddress(l.Topics[2].Bytes()), nil
	}
	return common.Address{}, errors.New(safeWalletCreatedEvent + " event not found in receipt")
}
