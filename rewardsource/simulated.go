package rewardsource

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
)

// Operations of Simulated that can be made to fail.
const (
	OpCurrentHeight = "currentheight"
	OpSubmitAttempt = "submitattempt"
	OpCheckAttempt  = "checkattempt"
	OpCheckWinning  = "checkwinning"
	OpClaim         = "claim"
	OpBalanceOf     = "balanceof"
	OpTransfer      = "transfer"
)

var (
	ErrNoAttempt        = errors.New("no attempt in window")
	ErrDuplicateAttempt = errors.New("attempt already submitted in window")
	ErrWindowNotOver    = errors.New("window not over")
	ErrWindowMismatch   = errors.New("attempt window is not the current window")
	ErrNotWon           = errors.New("window not won")
	ErrRewardClaimed    = errors.New("reward already claimed")
	ErrInsufficient     = errors.New("insufficient balance")
)

type SimulatedConfig struct {
	WindowSize  uint64
	BlockReward *big.Int
	// WinPercent is the chance in percent that an attempted window wins.
	WinPercent  uint64
	Seed        []byte
	StartHeight uint64
}

// Simulated is an in-process reward source and token.  Whether a window
// wins is a deterministic draw over the seed, so runs are reproducible.
type Simulated struct {
	mtx sync.Mutex

	windowSize  uint64
	blockReward *big.Int
	winPercent  uint64
	seed        []byte
	height      uint64

	attempts map[uint64]map[common.Address]*big.Int
	outcome  map[uint64]bool
	claimed  map[uint64]bool
	balances map[common.Address]*big.Int

	failures map[string]error
	calls    map[string]int
}

func NewSimulated(cfg SimulatedConfig) *Simulated {
	windowSize := cfg.WindowSize
	if windowSize == 0 {
		windowSize = 1
	}
	reward := new(big.Int)
	if cfg.BlockReward != nil {
		reward.Set(cfg.BlockReward)
	}
	winPercent := cfg.WinPercent
	if winPercent > 100 {
		winPercent = 100
	}
	return &Simulated{
		windowSize:  windowSize,
		blockReward: reward,
		winPercent:  winPercent,
		seed:        append([]byte(nil), cfg.Seed...),
		height:      cfg.StartHeight,
		attempts:    make(map[uint64]map[common.Address]*big.Int),
		outcome:     make(map[uint64]bool),
		claimed:     make(map[uint64]bool),
		balances:    make(map[common.Address]*big.Int),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
}

// begin must be called with the lock held.
func (s *Simulated) begin(op string) error {
	s.calls[op]++
	if err, ok := s.failures[op]; ok {
		return err
	}
	return nil
}

// Fail makes every later call of op return err, a nil err clears it.
func (s *Simulated) Fail(op string, err error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times op has been called.
func (s *Simulated) Calls(op string) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.calls[op]
}

func (s *Simulated) SetHeight(height uint64) {
	s.mtx.Lock()
	s.height = height
	s.mtx.Unlock()
}

func (s *Simulated) Advance(blocks uint64) uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.height += blocks
	return s.height
}

// AdvanceWindows moves the height to the first block n windows later.
func (s *Simulated) AdvanceWindows(n uint64) uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.height = (s.height/s.windowSize + n) * s.windowSize
	return s.height
}

// SetOutcome forces the result of the draw for window.
func (s *Simulated) SetOutcome(window uint64, won bool) {
	s.mtx.Lock()
	s.outcome[window] = won
	s.mtx.Unlock()
}

// Credit adds amount to the token balance of addr.
func (s *Simulated) Credit(addr common.Address, amount *big.Int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.balanceLocked(addr).Add(s.balanceLocked(addr), amount)
}

// AttemptValue returns the value miner submitted in window, nil if none.
func (s *Simulated) AttemptValue(window uint64, miner common.Address) *big.Int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	value, ok := s.attempts[window][miner]
	if !ok {
		return nil
	}
	return new(big.Int).Set(value)
}

func (s *Simulated) balanceLocked(addr common.Address) *big.Int {
	balance, ok := s.balances[addr]
	if !ok {
		balance = new(big.Int)
		s.balances[addr] = balance
	}
	return balance
}

func (s *Simulated) wonLocked(window uint64) bool {
	if won, ok := s.outcome[window]; ok {
		return won
	}
	won := utils.WindowDraw(s.seed, window)%100 < s.winPercent
	s.outcome[window] = won
	return won
}

func (s *Simulated) CurrentHeight(ctx context.Context) (uint64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpCurrentHeight); err != nil {
		return 0, err
	}
	return s.height, nil
}

func (s *Simulated) SubmitAttempt(ctx context.Context, from common.Address, window uint64, value *big.Int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpSubmitAttempt); err != nil {
		return err
	}
	if value == nil || value.Sign() <= 0 {
		return fmt.Errorf("invalid attempt value %v", value)
	}

	if current := s.height / s.windowSize; current != window {
		return fmt.Errorf("%w: attempt for %v, current %v", ErrWindowMismatch, window, current)
	}
	miners, ok := s.attempts[window]
	if !ok {
		miners = make(map[common.Address]*big.Int)
		s.attempts[window] = miners
	}
	if _, ok := miners[from]; ok {
		return ErrDuplicateAttempt
	}
	miners[from] = new(big.Int).Set(value)
	log.Debugf("Attempt of %v from %v in window %v", value, from.Hex(), window)
	return nil
}

func (s *Simulated) CheckAttemptExists(ctx context.Context, window uint64, miner common.Address) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpCheckAttempt); err != nil {
		return false, err
	}
	_, ok := s.attempts[window][miner]
	return ok, nil
}

// CheckWinning reports whether the attempts of window won.  It fails until
// the window is over.
func (s *Simulated) CheckWinning(ctx context.Context, window uint64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpCheckWinning); err != nil {
		return false, err
	}
	if s.height/s.windowSize <= window {
		return false, ErrWindowNotOver
	}
	if len(s.attempts[window]) == 0 {
		return false, nil
	}
	return s.wonLocked(window), nil
}

func (s *Simulated) Claim(ctx context.Context, window uint64, creditTo common.Address) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpClaim); err != nil {
		return err
	}
	if s.height/s.windowSize <= window {
		return ErrWindowNotOver
	}
	if len(s.attempts[window]) == 0 {
		return ErrNoAttempt
	}
	if !s.wonLocked(window) {
		return ErrNotWon
	}
	if s.claimed[window] {
		return ErrRewardClaimed
	}
	s.claimed[window] = true
	balance := s.balanceLocked(creditTo)
	balance.Add(balance, s.blockReward)
	log.Debugf("Window %v reward %v credited to %v", window, s.blockReward, creditTo.Hex())
	return nil
}

func (s *Simulated) BalanceOf(ctx context.Context, addr common.Address) (*big.Int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpBalanceOf); err != nil {
		return nil, err
	}
	return new(big.Int).Set(s.balanceLocked(addr)), nil
}

func (s *Simulated) Transfer(ctx context.Context, from common.Address, payouts ...Payout) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.begin(OpTransfer); err != nil {
		return err
	}

	total := new(big.Int)
	for _, payout := range payouts {
		if payout.Amount == nil || payout.Amount.Sign() < 0 {
			return fmt.Errorf("invalid payout amount %v", payout.Amount)
		}
		total.Add(total, payout.Amount)
	}
	balance := s.balanceLocked(from)
	if balance.Cmp(total) < 0 {
		return fmt.Errorf("%w: %v has %v, need %v", ErrInsufficient, from.Hex(), balance, total)
	}

	balance.Sub(balance, total)
	for _, payout := range payouts {
		to := s.balanceLocked(payout.To)
		to.Add(to, payout.Amount)
	}
	return nil
}

// Run advances the height by one block every interval until ctx is done.
func (s *Simulated) Run(ctx context.Context, clock clockwork.Clock, interval time.Duration) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Simulated reward source started, one block every %v", interval)
	for {
		select {
		case <-ctx.Done():
			log.Infof("Simulated reward source stopped")
			return
		case <-ticker.Chan():
			height := s.Advance(1)
			log.Tracef("Simulated height %v", height)
		}
	}
}
