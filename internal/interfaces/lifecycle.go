package interfaces

import (
	"context"

	"github.com/smartlife/devicebridge/internal/config"
	"github.com/smartlife/devicebridge/internal/pairing"
	"github.com/smartlife/devicebridge/internal/registry"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State             string `json:"state"`
	TestDeviceCount   int    `json:"test_device_count"`
	PairingInProgress bool   `json:"pairing_in_progress"`
	ConnectedClients  int    `json:"connected_clients"`
}

// LifecycleManager wires the bridge's components together and hands the
// API layer everything it needs without global state.
type LifecycleManager interface {
	Config() *config.Config
	Registry() *registry.Registry
	Pairing() *pairing.Manager
	CommandValidator() *registry.CommandValidator
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
