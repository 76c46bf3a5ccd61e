// Package registry merges the remote cloud backend and the local mock
// store into one device catalog and routes every control or removal
// operation to the backend that owns the target identifier.
package registry

import (
	"context"
	"errors"

	"github.com/smartlife/devicebridge/internal/api/websocket"
	"github.com/smartlife/devicebridge/internal/mock"
	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

// DeviceService is the narrow contract the remote backend must satisfy.
type DeviceService interface {
	FetchHomeDevices(ctx context.Context, homeID int64) ([]types.Device, error)
	SendCommand(ctx context.Context, deviceID string, commands map[string]any) error
	RemoveDevice(ctx context.Context, deviceID string) error
}

// DeletionStats summarizes what the bridge may delete. Real devices are
// not tracked locally, so RealDevices stays 0 and CanDeleteReal true
// regardless of remote inventory.
type DeletionStats struct {
	TotalDevices  int  `json:"totalDevices"`
	TestDevices   int  `json:"testDevices"`
	RealDevices   int  `json:"realDevices"`
	CanDeleteReal bool `json:"canDeleteReal"`
}

type Registry struct {
	cloud  DeviceService
	store  *mock.Store
	wsHub  *websocket.Hub
	logger *zap.Logger
}

func NewRegistry(cloud DeviceService, store *mock.Store, wsHub *websocket.Hub, logger *zap.Logger) *Registry {
	return &Registry{
		cloud:  cloud,
		store:  store,
		wsHub:  wsHub,
		logger: logger,
	}
}

// ListDevices returns the merged catalog for a home: remote devices
// first, mock devices appended after. A remote failure is downgraded to
// an empty remote list so that local devices stay visible while the
// cloud is unreachable.
func (r *Registry) ListDevices(ctx context.Context, homeID int64) []types.Device {
	remote, err := r.cloud.FetchHomeDevices(ctx, homeID)
	if err != nil {
		r.logger.Warn("Remote device fetch failed, serving mock devices only",
			zap.Int64("home_id", homeID),
			zap.Error(err))
		remote = nil
	}

	mocks := r.store.List()

	devices := make([]types.Device, 0, len(remote)+len(mocks))
	devices = append(devices, remote...)
	devices = append(devices, mocks...)
	return devices
}

// ControlDevice routes a command payload to the owning backend.
func (r *Registry) ControlDevice(ctx context.Context, deviceID string, commands map[string]any) error {
	switch ClassifyID(deviceID) {
	case OwnerMock:
		device, err := r.store.Control(deviceID, commands)
		if err != nil {
			if errors.Is(err, mock.ErrDeviceNotFound) {
				return types.NewBridgeError(types.CodeDeviceNotFound, "device not found: %s", deviceID)
			}
			return err
		}
		r.broadcast(websocket.NewDeviceControlledMessage(device.ID, device.Status))
		return nil
	default:
		if err := r.cloud.SendCommand(ctx, deviceID, commands); err != nil {
			return err
		}
		r.broadcast(websocket.NewDeviceControlledMessage(deviceID, commands))
		return nil
	}
}

// RemoveDevice routes a removal to the owning backend. The home ID is
// only relevant for logging; the cloud unbind call is keyed by device.
func (r *Registry) RemoveDevice(ctx context.Context, deviceID string, homeID int64) error {
	switch ClassifyID(deviceID) {
	case OwnerMock:
		if _, err := r.store.Remove(deviceID); err != nil {
			if errors.Is(err, mock.ErrDeviceNotFound) {
				return types.NewBridgeError(types.CodeDeviceNotFound, "device not found: %s", deviceID)
			}
			return err
		}
	default:
		if err := r.cloud.RemoveDevice(ctx, deviceID); err != nil {
			return err
		}
	}

	r.logger.Info("Device removed",
		zap.String("device_id", deviceID),
		zap.Int64("home_id", homeID),
		zap.String("owner", ClassifyID(deviceID).String()))
	r.broadcast(websocket.NewDeviceRemovedMessage(deviceID))
	return nil
}

// AddTestDevice creates a simulated device in the mock store.
func (r *Registry) AddTestDevice(name, deviceType string) types.Device {
	device := r.store.AddTestDevice(name, deviceType)

	r.logger.Info("Test device added",
		zap.String("device_id", device.ID),
		zap.String("type", device.Category))
	r.broadcast(websocket.NewDeviceAddedMessage(device.ID, device.Name))
	return device
}

// RemoveTestDevice deletes a mock record by ID.
func (r *Registry) RemoveTestDevice(deviceID string) error {
	if _, err := r.store.Remove(deviceID); err != nil {
		if errors.Is(err, mock.ErrDeviceNotFound) {
			return types.NewBridgeError(types.CodeDeviceNotFound, "test device not found: %s", deviceID)
		}
		return err
	}
	r.broadcast(websocket.NewDeviceRemovedMessage(deviceID))
	return nil
}

// ClearAllTestDevices empties the mock store and reports how many
// records were dropped.
func (r *Registry) ClearAllTestDevices() int {
	count := r.store.ClearAll()
	r.logger.Info("Cleared test devices", zap.Int("count", count))
	return count
}

// GetDeletionStats reports deletable-device counts. Only mock devices
// are counted; the remote inventory is not tracked here.
func (r *Registry) GetDeletionStats() DeletionStats {
	testCount := r.store.Count()
	return DeletionStats{
		TotalDevices:  testCount,
		TestDevices:   testCount,
		RealDevices:   0,
		CanDeleteReal: true,
	}
}

// Templates lists the mock device types available to AddTestDevice.
func (r *Registry) Templates() []mock.TemplateInfo {
	return mock.Templates()
}

func (r *Registry) broadcast(msg websocket.Message) {
	if r.wsHub != nil {
		r.wsHub.Broadcast(msg)
	}
}
