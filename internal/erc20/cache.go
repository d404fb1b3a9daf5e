package erc20

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
)

// AssetCache caches token metadata by address.
type AssetCache struct {
	caller Caller
	logger *zap.Logger

	mu   sync.RWMutex
	data map[common.Address]model.Asset
}

func NewAssetCache(caller Caller, logger *zap.Logger) *AssetCache {
	return &AssetCache{caller: caller, logger: logger, data: make(map[common.Address]model.Asset)}
}

func (c *AssetCache) Get(token common.Address) (model.Asset, bool) {
	c.mu.RLock()
	asset, ok := c.data[token]
	c.mu.RUnlock()
	return asset, ok
}

func (c *AssetCache) Set(asset model.Asset) {
	c.mu.Lock()
	c.data[asset.Address] = asset
	c.mu.Unlock()
}

// Resolve returns cached metadata or fetches it once.
func (c *AssetCache) Resolve(ctx context.Context, token common.Address) (model.Asset, error) {
	if asset, ok := c.Get(token); ok {
		return asset, nil
	}
	asset, err := FetchAsset(ctx, c.caller, token, c.logger)
	if err != nil {
		return model.Asset{}, err
	}
	c.Set(asset)
	return asset, nil
}
