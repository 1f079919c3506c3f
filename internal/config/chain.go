package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultChainModule    = "game"
	defaultChainGasBudget = 10_000_000
	defaultChainTimeout   = 15 * time.Second
)

type Chain struct {
	RPCURL      string
	RelayURL    string
	PackageID   string
	GameStateID string
	Module      string
	GasBudget   uint64
	Timeout     time.Duration
}

// ChainOffline reports whether the in-process chain should be used instead of
// a real node.
func ChainOffline() bool {
	return enabled("CHAIN_OFFLINE")
}

func NewChain() (*Chain, error) {
	rpcURL, ok := os.LookupEnv("CHAIN_RPC_URL")
	if !ok {
		return nil, fmt.Errorf("no CHAIN_RPC_URL env variable set")
	}

	relayURL, ok := os.LookupEnv("CHAIN_RELAY_URL")
	if !ok {
		return nil, fmt.Errorf("no CHAIN_RELAY_URL env variable set")
	}

	packageID, ok := os.LookupEnv("CHAIN_PACKAGE_ID")
	if !ok {
		return nil, fmt.Errorf("no CHAIN_PACKAGE_ID env variable set")
	}

	gameStateID, ok := os.LookupEnv("CHAIN_GAME_STATE_ID")
	if !ok {
		return nil, fmt.Errorf("no CHAIN_GAME_STATE_ID env variable set")
	}

	module, ok := os.LookupEnv("CHAIN_MODULE")
	if !ok {
		module = defaultChainModule
	}

	gasBudget := uint64(defaultChainGasBudget)
	if s, ok := os.LookupEnv("CHAIN_GAS_BUDGET"); ok {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse CHAIN_GAS_BUDGET: %w", err)
		}
		gasBudget = v
	}

	timeout := defaultChainTimeout
	if s, ok := os.LookupEnv("CHAIN_TIMEOUT"); ok {
		v, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("unable to parse CHAIN_TIMEOUT: %w", err)
		}
		timeout = v
	}

	return &Chain{
		RPCURL:      rpcURL,
		RelayURL:    relayURL,
		PackageID:   packageID,
		GameStateID: gameStateID,
		Module:      module,
		GasBudget:   gasBudget,
		Timeout:     timeout,
	}, nil
}
