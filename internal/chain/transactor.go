package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Transactor estimates and sends transactions signed with a local key.
type Transactor struct {
	client *Client
	key    *ecdsa.PrivateKey
	from   common.Address
	logger *zap.Logger
}

// NewTransactor parses a hex private key (with or without 0x).
func NewTransactor(client *Client, hexKey string, logger *zap.Logger) (*Transactor, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transactor{
		client: client,
		key:    key,
		from:   crypto.PubkeyToAddress(key.PublicKey),
		logger: logger,
	}, nil
}

// From returns the signing account.
func (t *Transactor) From() common.Address {
	return t.from
}

// EstimateGas simulates a call from the signing account.
func (t *Transactor) EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error) {
	return t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  t.from,
		To:    &to,
		Data:  data,
		Value: value,
	})
}

// Send signs and broadcasts a call with an explicit gas limit.
func (t *Transactor) Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error) {
	chainID, err := t.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain id: %w", err)
	}
	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas price: %w", err)
	}
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), t.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	if err := t.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	t.logger.Debug("tx sent",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
	)
	return signed.Hash(), nil
}
