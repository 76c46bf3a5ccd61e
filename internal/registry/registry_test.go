package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/smartlife/devicebridge/internal/mock"
	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

// fakeCloud records calls and serves canned responses.
type fakeCloud struct {
	devices    []types.Device
	fetchErr   error
	commandErr error
	removeErr  error

	sentCommands map[string]map[string]any
	removedIDs   []string
}

func (f *fakeCloud) FetchHomeDevices(ctx context.Context, homeID int64) ([]types.Device, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.devices, nil
}

func (f *fakeCloud) SendCommand(ctx context.Context, deviceID string, commands map[string]any) error {
	if f.commandErr != nil {
		return f.commandErr
	}
	if f.sentCommands == nil {
		f.sentCommands = make(map[string]map[string]any)
	}
	f.sentCommands[deviceID] = commands
	return nil
}

func (f *fakeCloud) RemoveDevice(ctx context.Context, deviceID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedIDs = append(f.removedIDs, deviceID)
	return nil
}

func newTestRegistry(cloud *fakeCloud) (*Registry, *mock.Store) {
	store := mock.NewStore()
	return NewRegistry(cloud, store, nil, zap.NewNop()), store
}

func TestClassifyID(t *testing.T) {
	tests := []struct {
		id   string
		want Owner
	}{
		{"test_light_1_123", OwnerMock},
		{"paired_456", OwnerMock},
		{"mock_anything", OwnerMock},
		{"bf1234567890", OwnerRemote},
		{"", OwnerRemote},
		{"latest_thing", OwnerRemote}, // prefix match, not substring
	}

	for _, tt := range tests {
		if got := ClassifyID(tt.id); got != tt.want {
			t.Errorf("ClassifyID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestListDevicesMergesRemoteFirst(t *testing.T) {
	cloud := &fakeCloud{devices: []types.Device{{ID: "bf001"}, {ID: "bf002"}}}
	r, store := newTestRegistry(cloud)
	m := store.AddTestDevice("local", "plug")

	devices := r.ListDevices(context.Background(), 42)

	if len(devices) != 3 {
		t.Fatalf("len = %d, want 3", len(devices))
	}
	if devices[0].ID != "bf001" || devices[1].ID != "bf002" || devices[2].ID != m.ID {
		t.Errorf("order = %v, want remote first then mock", []string{devices[0].ID, devices[1].ID, devices[2].ID})
	}
}

func TestListDevicesSwallowsRemoteFailure(t *testing.T) {
	cloud := &fakeCloud{fetchErr: &types.RemoteError{Code: "1010", Message: "token expired"}}
	r, store := newTestRegistry(cloud)
	m := store.AddTestDevice("local", "plug")

	devices := r.ListDevices(context.Background(), 42)

	if len(devices) != 1 || devices[0].ID != m.ID {
		t.Errorf("devices = %v, want mock devices only when remote fails", devices)
	}
}

func TestControlDeviceRouting(t *testing.T) {
	cloud := &fakeCloud{}
	r, store := newTestRegistry(cloud)
	m := store.AddTestDevice("local", "light")

	// Mock-owned ID goes to the store.
	if err := r.ControlDevice(context.Background(), m.ID, map[string]any{"switch_1": true}); err != nil {
		t.Fatalf("ControlDevice mock: %v", err)
	}
	if len(cloud.sentCommands) != 0 {
		t.Error("mock control must not reach the cloud")
	}

	// Remote ID goes to the cloud.
	if err := r.ControlDevice(context.Background(), "bf001", map[string]any{"switch_1": false}); err != nil {
		t.Fatalf("ControlDevice remote: %v", err)
	}
	if _, ok := cloud.sentCommands["bf001"]; !ok {
		t.Error("remote control did not reach the cloud")
	}
}

func TestControlDeviceNotFound(t *testing.T) {
	r, _ := newTestRegistry(&fakeCloud{})

	err := r.ControlDevice(context.Background(), "test_light_9_0", map[string]any{"switch_1": true})

	var bridgeErr *types.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != types.CodeDeviceNotFound {
		t.Errorf("err = %v, want BridgeError %s", err, types.CodeDeviceNotFound)
	}
}

func TestControlDeviceRemoteErrorPassthrough(t *testing.T) {
	wantErr := &types.RemoteError{Code: "2008", Message: "device offline"}
	r, _ := newTestRegistry(&fakeCloud{commandErr: wantErr})

	err := r.ControlDevice(context.Background(), "bf001", map[string]any{"switch_1": true})

	var remoteErr *types.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Code != "2008" {
		t.Errorf("err = %v, want remote error passed through verbatim", err)
	}
}

func TestRemoveDeviceRouting(t *testing.T) {
	cloud := &fakeCloud{}
	r, store := newTestRegistry(cloud)
	m := store.AddTestDevice("local", "plug")

	if err := r.RemoveDevice(context.Background(), m.ID, 42); err != nil {
		t.Fatalf("RemoveDevice mock: %v", err)
	}
	if store.Count() != 0 {
		t.Error("mock device not removed from store")
	}

	if err := r.RemoveDevice(context.Background(), "bf001", 42); err != nil {
		t.Fatalf("RemoveDevice remote: %v", err)
	}
	if len(cloud.removedIDs) != 1 || cloud.removedIDs[0] != "bf001" {
		t.Errorf("cloud removals = %v", cloud.removedIDs)
	}
}

func TestRemoveDeviceNotFound(t *testing.T) {
	r, _ := newTestRegistry(&fakeCloud{})

	err := r.RemoveDevice(context.Background(), "paired_0", 42)

	var bridgeErr *types.BridgeError
	if !errors.As(err, &bridgeErr) || bridgeErr.Code != types.CodeDeviceNotFound {
		t.Errorf("err = %v, want BridgeError %s", err, types.CodeDeviceNotFound)
	}
}

func TestTestDeviceLifecycle(t *testing.T) {
	r, store := newTestRegistry(&fakeCloud{})

	d := r.AddTestDevice("Desk", "light")
	if store.Count() != 1 {
		t.Fatalf("Count = %d", store.Count())
	}

	stats := r.GetDeletionStats()
	if stats.TotalDevices != 1 || stats.TestDevices != 1 || stats.RealDevices != 0 || !stats.CanDeleteReal {
		t.Errorf("stats = %+v", stats)
	}

	if err := r.RemoveTestDevice(d.ID); err != nil {
		t.Fatalf("RemoveTestDevice: %v", err)
	}
	if err := r.RemoveTestDevice(d.ID); err == nil {
		t.Error("removing a removed device must fail")
	}

	r.AddTestDevice("a", "plug")
	r.AddTestDevice("b", "fan")
	if n := r.ClearAllTestDevices(); n != 2 {
		t.Errorf("ClearAllTestDevices = %d, want 2", n)
	}
}

func TestTemplatesExposed(t *testing.T) {
	r, _ := newTestRegistry(&fakeCloud{})
	if len(r.Templates()) == 0 {
		t.Error("Templates() returned nothing")
	}
}
