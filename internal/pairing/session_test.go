package pairing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartlife/devicebridge/internal/mock"
	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

func newTestManager(store *mock.Store) *Manager {
	return NewManager(store, nil, 30*time.Millisecond, 60*time.Millisecond, zap.NewNop())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"EZ", ModeEZ, true},
		{"AP", ModeAP, true},
		{"ez", "", false},
		{"", "", false},
		{"WPS", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStartPairingCompletes(t *testing.T) {
	store := mock.NewStore()
	m := newTestManager(store)

	device, err := m.StartPairing(context.Background(), ModeEZ, "HomeWifi", 0)
	if err != nil {
		t.Fatalf("StartPairing: %v", err)
	}

	if !strings.HasPrefix(device.ID, "paired_") {
		t.Errorf("device ID = %q, want paired_ prefix", device.ID)
	}
	if device.Name != "Paired Device - HomeWifi" {
		t.Errorf("device Name = %q", device.Name)
	}
	if store.Count() != 1 {
		t.Errorf("store Count = %d, want 1", store.Count())
	}

	state, _ := m.Status()
	if state != StateIdle {
		t.Errorf("state after completion = %v, want idle", state)
	}
}

func TestStartPairingRejectsConcurrent(t *testing.T) {
	m := newTestManager(mock.NewStore())

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		m.StartPairing(context.Background(), ModeAP, "net", 0)
	}()

	<-started
	// Give the first attempt a moment to grab the session.
	deadline := time.Now().Add(time.Second)
	for {
		if state, _ := m.Status(); state == StateInProgress {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first attempt never reached in_progress")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := m.StartPairing(context.Background(), ModeEZ, "other", 0)

	var bridgeErr *types.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != types.CodePairingInProgress {
		t.Errorf("err = %v, want BridgeError %s", err, types.CodePairingInProgress)
	}

	wg.Wait()
}

func TestStopPairingCancelsPendingCompletion(t *testing.T) {
	store := mock.NewStore()
	m := NewManager(store, nil, time.Second, time.Second, zap.NewNop())

	errCh := make(chan error, 1)
	go func() {
		_, err := m.StartPairing(context.Background(), ModeEZ, "net", 0)
		errCh <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if state, _ := m.Status(); state == StateInProgress {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("attempt never started")
		}
		time.Sleep(time.Millisecond)
	}

	m.StopPairing()

	select {
	case err := <-errCh:
		var bridgeErr *types.BridgeError
		if !errors.As(err, &bridgeErr) || bridgeErr.Code != types.CodePairingStopped {
			t.Errorf("err = %v, want BridgeError %s", err, types.CodePairingStopped)
		}
	case <-time.After(time.Second):
		t.Fatal("StartPairing did not return after StopPairing")
	}

	if store.Count() != 0 {
		t.Error("stopped attempt must not insert a device")
	}
	// Nothing shows up later either.
	time.Sleep(50 * time.Millisecond)
	if store.Count() != 0 {
		t.Error("device appeared after the attempt was stopped")
	}
}

func TestStopPairingWhenIdle(t *testing.T) {
	m := newTestManager(mock.NewStore())

	// Must be a no-op, not a panic or a stuck state.
	m.StopPairing()
	m.StopPairing()

	state, mode := m.Status()
	if state != StateIdle || mode != "" {
		t.Errorf("Status = %v, %q; want idle and no mode", state, mode)
	}
}

func TestStartPairingContextCancelled(t *testing.T) {
	store := mock.NewStore()
	m := NewManager(store, nil, time.Second, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.StartPairing(ctx, ModeEZ, "net", 0)
		errCh <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if state, _ := m.Status(); state == StateInProgress {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("attempt never started")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("StartPairing did not return after context cancel")
	}

	state, _ := m.Status()
	if state != StateIdle {
		t.Errorf("state = %v, want idle after abandoned attempt", state)
	}
	if store.Count() != 0 {
		t.Error("abandoned attempt must not insert a device")
	}
}

func TestStatusReportsModeWhileInProgress(t *testing.T) {
	m := NewManager(mock.NewStore(), nil, time.Second, time.Second, zap.NewNop())

	go m.StartPairing(context.Background(), ModeAP, "net", 0)

	deadline := time.Now().Add(time.Second)
	for {
		state, mode := m.Status()
		if state == StateInProgress {
			if mode != ModeAP {
				t.Errorf("mode = %q, want AP", mode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("attempt never started")
		}
		time.Sleep(time.Millisecond)
	}

	m.StopPairing()
}

func TestSequentialAttemptsAfterCompletion(t *testing.T) {
	store := mock.NewStore()
	m := newTestManager(store)

	for i := 0; i < 2; i++ {
		if _, err := m.StartPairing(context.Background(), ModeEZ, "net", 0); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	if store.Count() != 2 {
		t.Errorf("store Count = %d, want 2", store.Count())
	}
}
