package rewardmgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
)

// Ledger is the part of the ledger driven by the reward manager.
type Ledger interface {
	EpochLength() uint64
	CurrentWindow(ctx context.Context) (uint64, error)
	Mine(ctx context.Context) (*ledger.MineResult, error)
	Claim(ctx context.Context, window uint64, creditTo common.Address) (*ledger.ClaimResult, error)
	PendingWindows(ctx context.Context, window uint64, num int) ([]uint64, error)
}

type Config struct {
	Ledger Ledger
	// AutoMine submits an attempt once in every new window.  Matured
	// windows are claimed regardless.
	AutoMine     bool
	PollInterval time.Duration
	// CreditTo is passed to claim, it has no accounting effect.
	CreditTo common.Address
	Clock    clockwork.Clock
}

// RewardManager watches the external height and keeps the pool mining: it
// mines once per window and claims every attempted window once it matures.
type RewardManager struct {
	started  int32
	shutdown int32

	autoMine      bool
	ledger        Ledger
	creditTo      common.Address
	clock         clockwork.Clock
	interval      time.Duration
	openedWindow  int64
	currentWindow int64

	notificationsLock sync.RWMutex
	notifications     []NotificationCallback

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRewardManager(cfg *Config) *RewardManager {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = constdef.DefaultPollIntervalSec * time.Second
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RewardManager{
		autoMine:      cfg.AutoMine,
		ledger:        cfg.Ledger,
		creditTo:      cfg.CreditTo,
		clock:         clock,
		interval:      interval,
		openedWindow:  -1,
		currentWindow: -1,
	}
}

// Subscribe to notifications. Registers a callback to be executed
// when a window opens or is resolved.
func (m *RewardManager) Subscribe(callback NotificationCallback) {
	m.notificationsLock.Lock()
	m.notifications = append(m.notifications, callback)
	m.notificationsLock.Unlock()
}

// sendNotification sends a notification with the passed type and data to
// every subscriber.
func (m *RewardManager) sendNotification(typ NotificationType, data interface{}) {
	n := Notification{Type: typ, Data: data}
	m.notificationsLock.RLock()
	for _, callback := range m.notifications {
		callback(&n)
	}
	m.notificationsLock.RUnlock()
}

func (m *RewardManager) Start() {
	if atomic.AddInt32(&m.started, 1) != 1 {
		return
	}

	log.Infof("Starting reward manager (auto mine: %v, poll interval: %v)", m.autoMine, m.interval)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.pollHandler(ctx)
}

func (m *RewardManager) Stop() {
	if atomic.AddInt32(&m.shutdown, 1) != 1 {
		log.Infof("Reward manager is already in the process of shutting down")
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	log.Infof("Reward manager stopped")
}

func (m *RewardManager) pollHandler(ctx context.Context) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.poll(ctx)
		}
	}
}

// poll runs one round, it only acts when a new window has started or the
// mining of the current window has not succeeded yet.
func (m *RewardManager) poll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogRecovered("reward manager poll", r)
		}
	}()

	window, err := m.ledger.CurrentWindow(ctx)
	if err != nil {
		log.Errorf("Unable to get current window: %v", err)
		return
	}
	if int64(window) == m.currentWindow {
		return
	}
	opened := int64(window) != m.openedWindow
	if opened {
		m.openedWindow = int64(window)
		log.Infof("[Open] window %v", window)
	}

	attempted, done := false, true
	if m.autoMine {
		attempted, done = m.mine(ctx)
	}
	if done {
		m.currentWindow = int64(window)
	} else {
		log.Infof("Mining of window %v will be retried in %v", window, m.interval)
	}
	if opened {
		m.sendNotification(NTWindowOpened, &WindowOpened{
			Window:    window,
			Epoch:     window / m.ledger.EpochLength(),
			Attempted: attempted,
		})
	}
	m.claimMatured(ctx, window)
}

// mine reports whether an attempt was submitted for the current window and
// whether the window needs no further mining.
func (m *RewardManager) mine(ctx context.Context) (attempted bool, done bool) {
	res, err := m.ledger.Mine(ctx)
	switch {
	case err == nil:
		if res.Attempted {
			log.Infof("[Pending] window %v attempted with %v from %v participants", res.Window, res.Total, res.Participants)
		} else {
			log.Debugf("Window %v has no stake", res.Window)
		}
		return res.Attempted, true
	case errors.Is(err, errcode.ErrAlreadyAttempted):
		log.Debugf("Window already attempted")
		return false, true
	case errors.Is(err, errcode.ErrPoolPaused):
		log.Warnf("Pool is paused, skip mining")
		return false, true
	default:
		log.Errorf("Unable to mine: %v", err)
		return false, false
	}
}

func (m *RewardManager) claimMatured(ctx context.Context, window uint64) {
	pending, err := m.ledger.PendingWindows(ctx, window, constdef.MaxClaimsPerPoll)
	if err != nil {
		log.Errorf("Unable to get pending windows: %v", err)
		return
	}
	for _, w := range pending {
		res, err := m.ledger.Claim(ctx, w, m.creditTo)
		if err != nil {
			if errcode.IsStateError(err) {
				log.Debugf("Skip window %v: %v", w, err)
				continue
			}
			// retried in the next window
			log.Errorf("Unable to claim window %v: %v", w, err)
			return
		}
		if res.Won {
			log.Infof("[Won!] window %v (epoch %v)", res.Window, res.Epoch)
		} else {
			log.Infof("[Missed] window %v (epoch %v)", res.Window, res.Epoch)
		}
		m.sendNotification(NTWindowResolved, res)
	}
}
