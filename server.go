package main

import (
	"context"
	"math/big"
	"time"

	"github.com/abesuite/gaopool/chaincfg"
	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/poolserver"
	"github.com/abesuite/gaopool/rewardmgr"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
)

type server struct {
	poolRPCServer *poolserver.PoolServer
	rewardManager *rewardmgr.RewardManager
	ledger        *ledger.Ledger

	source       *rewardsource.Simulated
	blockSeconds int
	cancelSource context.CancelFunc
}

// newSimulatedSource builds the in-process reward source of the active
// network.
func newSimulatedSource(cfg *config) *rewardsource.Simulated {
	params := chaincfg.ActiveNetParams
	return rewardsource.NewSimulated(rewardsource.SimulatedConfig{
		WindowSize:  params.WindowSize,
		BlockReward: new(big.Int).SetUint64(params.BlockReward),
		WinPercent:  cfg.SimWinPercent,
		Seed:        []byte(cfg.SimSeed),
	})
}

func newServer(ctx context.Context, cfg *config) (*server, error) {
	params := chaincfg.ActiveNetParams
	source := newSimulatedSource(cfg)

	// Every reward source address is served by the same in-process chain.
	factory := func(addr common.Address) (rewardsource.RewardSource, rewardsource.RewardToken, error) {
		poolLog.Infof("Switching to reward source %v", addr.Hex())
		return source, source, nil
	}

	l, err := ledger.New(ctx, dal.GetDB(ctx), ledger.Config{
		WindowSize:        params.WindowSize,
		EpochLength:       params.EpochLength,
		MinContribution:   new(big.Int).SetUint64(params.MinContribution()),
		BlockReward:       new(big.Int).SetUint64(params.BlockReward),
		Defaults:          cfg.poolDefaults,
		QuietEmptyRedeem:  cfg.QuietRedeem,
		ResolvedCacheSize: constdef.DefaultResolvedCacheSize,
		SourceFactory:     factory,
	}, source, source)
	if err != nil {
		return nil, err
	}

	poolSvr, err := poolserver.NewPoolServer(&poolserver.ConfigPoolServer{
		DisableTLS:           cfg.DisableTLS,
		ListenersString:      cfg.Listeners,
		StartupTime:          time.Now().Unix(),
		Network:              params.Name,
		RPCUser:              cfg.RPCUser,
		RPCPass:              cfg.RPCPass,
		RPCLimitUser:         cfg.RPCLimitUser,
		RPCLimitPass:         cfg.RPCLimitPass,
		RPCMaxClients:        cfg.RPCMaxClients,
		RPCMaxWebsockets:     cfg.RPCMaxWebsockets,
		RPCMaxConcurrentReqs: cfg.RPCMaxConcurrentReqs,
		RPCCert:              cfg.RPCCert,
		RPCKey:               cfg.RPCKey,
		ExternalIPs:          cfg.ExternalIPs,
	})
	if err != nil {
		return nil, err
	}
	poolSvr.SetCommonConfig(&poolserver.CommonConfig{
		Blacklist: cfg.blacklists,
		Whitelist: cfg.whitelists,
	})
	poolSvr.SetLedger(l)

	// Setup reward manager.
	rewardMgr := rewardmgr.NewRewardManager(&rewardmgr.Config{
		Ledger:       l,
		AutoMine:     !cfg.DisableAutoMine,
		PollInterval: time.Duration(cfg.PollInterval) * time.Second,
		CreditTo:     cfg.creditTo,
	})
	rewardMgr.Subscribe(poolSvr.HandleRewardManagerNotification)

	poolLog.Infof("Reward manager: auto mine: %v, poll interval: %vs", !cfg.DisableAutoMine, cfg.PollInterval)

	return &server{
		poolRPCServer: poolSvr,
		rewardManager: rewardMgr,
		ledger:        l,
		source:        source,
		blockSeconds:  cfg.SimBlockSeconds,
	}, nil
}

func (s *server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelSource = cancel
	go s.source.Run(ctx, clockwork.NewRealClock(), time.Duration(s.blockSeconds)*time.Second)

	s.poolRPCServer.Start()
	s.rewardManager.Start()
}

func (s *server) Stop() {
	s.rewardManager.Stop()
	if err := s.poolRPCServer.Stop(); err != nil {
		poolLog.Errorf("Unable to stop pool RPC server: %v", err)
	}
	if s.cancelSource != nil {
		s.cancelSource()
	}
}
