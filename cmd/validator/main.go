// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blinklabs-io/shai106/internal/allocator"
	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/chainadapter/evm"
	"github.com/blinklabs-io/shai106/internal/chainadapter/solana"
	"github.com/blinklabs-io/shai106/internal/config"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/emastore"
	"github.com/blinklabs-io/shai106/internal/logging"
	"github.com/blinklabs-io/shai106/internal/orchestrator"
	"github.com/blinklabs-io/shai106/internal/signer"
	"github.com/blinklabs-io/shai106/internal/submissionlog"
	"github.com/blinklabs-io/shai106/internal/substrateclient"
	"github.com/blinklabs-io/shai106/internal/version"
	"github.com/blinklabs-io/shai106/internal/weightpolicy"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "validator106"

var cmdlineFlags struct {
	configFile string
	version    bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.BoolVar(&cmdlineFlags.version, "version", false, "show version")
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("%s %s\n", programName, version.GetVersionString())
		os.Exit(0)
	}

	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("failed to load config: %s\n", err)
		os.Exit(1)
	}

	logging.Configure()
	logger := logging.GetLogger()
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Infof)); err != nil {
		logger.Warnw("failed to set GOMAXPROCS", "error", err)
	}

	if cfg.Debug.ListenPort > 0 {
		addr := fmt.Sprintf("%s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort)
		logger.Infow("starting debug listener", "address", addr)
		go func() {
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.Fatalw("debug listener failed", "error", err)
			}
		}()
	}

	endpoint := cfg.Substrate.WsURL
	if endpoint == "" {
		endpoint = cfg.Substrate.BittensorEndpoint
	}
	substrate := substrateclient.GetClient()
	if err := substrate.Initialize(endpoint); err != nil {
		logger.Fatalw("failed to connect to substrate endpoint", "error", err)
	}
	defer func() {
		_ = substrate.Close()
	}()

	signerInst, err := signer.GetSigner()
	if err != nil {
		logger.Fatalw("failed to derive signing key", "error", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		logger.Fatalw("failed to build chain adapter registry", "error", err)
	}

	emaStore := emastore.New(cfg.Ema.Alpha, cfg.Ema.Epsilon)
	snapshotter, err := emastore.OpenSnapshotter()
	if err != nil {
		logger.Warnw("failed to open ema snapshot store, starting cold", "error", err)
	} else {
		if err := snapshotter.Load(emaStore); err != nil {
			logger.Warnw("failed to load ema snapshot, starting cold", "error", err)
		}
		defer func() {
			if err := snapshotter.Persist(emaStore); err != nil {
				logger.Warnw("failed to persist ema snapshot on shutdown", "error", err)
			}
			_ = snapshotter.Close()
		}()
	}

	submissionLog, err := submissionlog.Open(cfg.Storage.Directory)
	if err != nil {
		logger.Fatalw("failed to open submission log", "error", err)
	}

	alloc := buildAllocator(cfg)

	orch := orchestrator.New(orchestrator.Deps{
		Registry:  registry,
		Substrate: substrate,
		Signer:    signerInst,
		EmaStore:  emaStore,
		Log:       submissionLog,
		Allocator: alloc,
		Netuid:    domain.SubnetID(cfg.Substrate.Netuid),
		Policy: weightpolicy.Params{
			UseEma:         cfg.Ema.Enabled,
			Epsilon:        cfg.Ema.Epsilon,
			BurnUID:        domain.BurnUID,
			BurnPercentage: cfg.Policy.BurnPercentage,
		},
	})

	sched := orchestrator.Schedule{
		Interval:  time.Duration(cfg.Policy.IntervalMinutes * float64(time.Minute)),
		Randomize: cfg.Policy.RandomizeInterval,
		RandomMin: 10 * time.Minute,
		RandomMax: 30 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("validator starting", "netuid", cfg.Substrate.Netuid, "chains", cfg.Chains.Enabled)
	orch.Run(ctx, sched)
}

// buildRegistry constructs one chain adapter per entry in
// cfg.Chains.Enabled, skipping chains whose RPC URL is unset.
func buildRegistry(cfg *config.Config) (*chainadapter.Registry, error) {
	logger := logging.GetLogger()
	var adapters []chainadapter.Adapter

	for _, chain := range cfg.Chains.Enabled {
		switch strings.ToLower(chain) {
		case "solana":
			if cfg.Chains.Solana.RPCURL == "" {
				logger.Warn("solana enabled but SOLANA_RPC_URL is unset, skipping")
				continue
			}
			client := rpc.New(cfg.Chains.Solana.RPCURL)
			adp, err := solana.New(client, cfg.Chains.Solana.StakingProgramID, cfg.Performance.MaxConcurrentBatches)
			if err != nil {
				return nil, fmt.Errorf("solana adapter: %w", err)
			}
			adapters = append(adapters, adp)
		case "ethereum", "base":
			evmCfg, ok := cfg.Chains.EVM[strings.ToLower(chain)]
			if !ok || evmCfg.RPCURL == "" {
				logger.Warnw("evm chain enabled but unconfigured, skipping", "chain", chain)
				continue
			}
			client, err := ethclient.Dial(evmCfg.RPCURL)
			if err != nil {
				return nil, fmt.Errorf("%s adapter dial: %w", chain, err)
			}
			tag := domain.ChainEthereum
			if strings.ToLower(chain) == "base" {
				tag = domain.ChainBase
			}
			adp := evm.New(
				tag,
				client,
				common.HexToAddress(evmCfg.StakingContractAddress),
				common.HexToAddress(evmCfg.PositionManagerAddress),
				cfg.Performance.MaxConcurrentBatches,
			)
			adapters = append(adapters, adp)
		}
	}

	return chainadapter.NewRegistry(adapters...), nil
}

func buildAllocator(cfg *config.Config) allocator.Allocator {
	switch strings.ToLower(cfg.Policy.Allocator) {
	case "chain-split":
		return allocator.ChainSplitAllocator{
			ReservedShareSubnet0:   cfg.Policy.ReservedShareSubnet0,
			ReservedShareSubnet106: cfg.Policy.ReservedShareSubnet106,
		}
	default:
		return allocator.ReservedShareAllocator{
			ReservedShareSubnet0:   cfg.Policy.ReservedShareSubnet0,
			ReservedShareSubnet106: cfg.Policy.ReservedShareSubnet106,
		}
	}
}
