package core

import (
	"github.com/huangsam/mlscore/core/evidence"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
)

// NewPipeline wires a production ArtifactManager from cfg. The cache and
// artifact store of mgr are optional.
func NewPipeline(cfg *contract.Config, mgr contract.StoreManager, ep harvest.Endpoints, opts ...harvest.Option) *ArtifactManager {
	var cache contract.CacheStore
	var store contract.ArtifactStore
	if mgr != nil {
		cache = mgr.GetCacheStore()
		store = mgr.GetArtifactStore()
	}

	stack := harvest.NewStack(cfg, cache, ep, opts...)
	normalizer := evidence.NewNormalizer(stack.GitHub, stack.Documents, cfg.Timeout)
	aggregator := NewAggregator(cfg.Weights, cfg.DeviceLimits)

	var managerOpts []ManagerOption
	if store != nil {
		managerOpts = append(managerOpts, WithArtifactStore(store))
	}
	return NewArtifactManager(stack.Harvester, normalizer, aggregator, managerOpts...)
}
