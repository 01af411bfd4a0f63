// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/mfreytag/diag-engine/internal/embedding"
	"github.com/mfreytag/diag-engine/internal/vectorindex"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// buildStack wires the embedding provider and the vector index. Offline
// mode swaps both for their in-process counterparts, which keeps every
// command usable without network access or API keys.
func buildStack(cfg types.EngineConfig, offline bool) (embedding.Provider, vectorindex.Index, error) {
	if offline {
		return embedding.NewLocal(localDimension), vectorindex.NewMemory(), nil
	}

	provider, err := embedding.NewOpenAI(cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}
	return provider, vectorindex.NewQdrant(cfg.Index), nil
}
