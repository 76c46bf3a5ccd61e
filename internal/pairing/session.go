// Package pairing models a single in-flight device-pairing attempt.
// Real provisioning handshakes are out of scope; the manager only
// simulates their timing and outcome, materializing the result as a
// mock device.
package pairing

import (
	"context"
	"sync"
	"time"

	"github.com/smartlife/devicebridge/internal/api/websocket"
	"github.com/smartlife/devicebridge/internal/mock"
	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
)

// Mode selects the simulated provisioning flavor: EZ is the quick
// broadcast-style flow, AP the slower access-point flow.
type Mode string

const (
	ModeEZ Mode = "EZ"
	ModeAP Mode = "AP"
)

// ParseMode accepts the wire spelling of a pairing mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeEZ, ModeAP:
		return Mode(s), true
	}
	return "", false
}

// Manager is the pairing session state machine. At most one attempt is
// in progress per manager; a second start is rejected outright, never
// queued. Stopping cancels the pending simulated completion.
type Manager struct {
	store  *mock.Store
	wsHub  *websocket.Hub
	logger *zap.Logger

	ezDelay time.Duration
	apDelay time.Duration

	mu     sync.Mutex
	state  State
	mode   Mode
	cancel chan struct{}
}

func NewManager(store *mock.Store, wsHub *websocket.Hub, ezDelay, apDelay time.Duration, logger *zap.Logger) *Manager {
	if ezDelay <= 0 {
		ezDelay = 3 * time.Second
	}
	if apDelay <= 0 {
		apDelay = 5 * time.Second
	}
	return &Manager{
		store:   store,
		wsHub:   wsHub,
		logger:  logger,
		ezDelay: ezDelay,
		apDelay: apDelay,
		state:   StateIdle,
	}
}

// Status reports the current session state and, while in progress, the
// active mode.
func (m *Manager) Status() (State, Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.mode
}

// StartPairing runs one simulated pairing attempt and blocks until it
// completes, is stopped, or the caller's context ends. On completion a
// paired device named after the network is inserted into the mock
// store and returned. The timeout hint is recorded for parity with the
// provisioning API; the simulated delay is a fixed per-mode parameter.
func (m *Manager) StartPairing(ctx context.Context, mode Mode, ssid string, timeoutHint time.Duration) (types.Device, error) {
	m.mu.Lock()
	if m.state == StateInProgress {
		m.mu.Unlock()
		return types.Device{}, types.NewBridgeError(types.CodePairingInProgress,
			"device pairing is already in progress, stop the current attempt first")
	}

	cancel := make(chan struct{})
	m.state = StateInProgress
	m.mode = mode
	m.cancel = cancel
	m.mu.Unlock()

	delay := m.ezDelay
	if mode == ModeAP {
		delay = m.apDelay
	}

	m.logger.Info("Pairing started",
		zap.String("mode", string(mode)),
		zap.String("ssid", ssid),
		zap.Duration("simulated_delay", delay),
		zap.Duration("timeout_hint", timeoutHint))
	m.broadcast(websocket.NewPairingMessage(websocket.MessageTypePairingStarted, string(mode), ""))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		device := m.store.AddPairedDevice(ssid)
		m.finish(cancel)

		m.logger.Info("Pairing completed",
			zap.String("device_id", device.ID),
			zap.String("mode", string(mode)))
		m.broadcast(websocket.NewPairingMessage(websocket.MessageTypePairingCompleted, string(mode), device.ID))
		return device, nil

	case <-cancel:
		// StopPairing already reset the session.
		return types.Device{}, types.NewBridgeError(types.CodePairingStopped,
			"pairing was stopped before completion")

	case <-ctx.Done():
		m.finish(cancel)
		m.logger.Warn("Pairing abandoned by caller", zap.String("mode", string(mode)))
		return types.Device{}, ctx.Err()
	}
}

// StopPairing force-transitions the session to idle regardless of its
// current state and cancels the pending simulated completion, so a
// stopped attempt never inserts a device afterwards.
func (m *Manager) StopPairing() {
	m.mu.Lock()
	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}
	wasActive := m.state == StateInProgress
	m.state = StateIdle
	m.mode = ""
	m.mu.Unlock()

	if wasActive {
		m.logger.Info("Pairing stopped")
		m.broadcast(websocket.NewPairingMessage(websocket.MessageTypePairingStopped, "", ""))
	}
}

// finish resets the session, but only if this attempt still owns it; a
// concurrent StopPairing followed by a new start must not be clobbered.
func (m *Manager) finish(cancel chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == cancel {
		m.state = StateIdle
		m.mode = ""
		m.cancel = nil
	}
}

func (m *Manager) broadcast(msg websocket.Message) {
	if m.wsHub != nil {
		m.wsHub.Broadcast(msg)
	}
}
