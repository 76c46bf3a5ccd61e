// Package mock holds the in-process store of simulated devices: test
// devices created explicitly for development and devices materialized by
// simulated pairing. Records live only in memory and are lost on
// teardown.
package mock

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smartlife/devicebridge/internal/types"
)

// ErrDeviceNotFound is returned when a device ID has no record in the store.
var ErrDeviceNotFound = errors.New("mock: device not found")

// initialCounter is the first number handed out for test-device IDs.
const initialCounter = 1

// Store is a mutable, insertion-ordered collection of simulated device
// records plus the counter used to keep generated IDs unique even when
// two devices are created within the same millisecond.
type Store struct {
	mu      sync.RWMutex
	devices []types.Device
	counter int
}

func NewStore() *Store {
	return &Store{counter: initialCounter}
}

// AddTestDevice synthesizes a device of the given type from its
// template and appends it to the store. The type keeps its original
// spelling in the generated fields; only the template lookup is
// case-insensitive, and unknown types fall back to the default
// three-channel switch.
func (s *Store) AddTestDevice(name, deviceType string) types.Device {
	tmpl := templateFor(strings.ToLower(deviceType))

	s.mu.Lock()
	defer s.mu.Unlock()

	number := s.counter
	s.counter++

	device := types.Device{
		ID:                 fmt.Sprintf("test_%s_%d_%d", deviceType, number, time.Now().UnixMilli()),
		Name:               name,
		IconURL:            tmpl.iconURL,
		Online:             true,
		LocalOnline:        true,
		ProductID:          "mock_product_" + deviceType,
		UUID:               fmt.Sprintf("mock_uuid_%d", number),
		Category:           deviceType,
		ProductName:        fmt.Sprintf("Mock %s Device", deviceType),
		SupportedFunctions: append([]string(nil), tmpl.functions...),
		Status:             cloneStatus(tmpl.status),
	}

	s.devices = append(s.devices, device)
	return device
}

// AddPairedDevice materializes the outcome of a completed pairing
// attempt: a single-switch device named after the Wi-Fi network it was
// paired against.
func (s *Store) AddPairedDevice(networkName string) types.Device {
	now := time.Now().UnixMilli()

	device := types.Device{
		ID:                 fmt.Sprintf("paired_%d", now),
		Name:               "Paired Device - " + networkName,
		IconURL:            templates[DefaultType].iconURL,
		Online:             true,
		LocalOnline:        true,
		ProductID:          fmt.Sprintf("paired_product_%d", now),
		UUID:               fmt.Sprintf("paired_uuid_%d", now),
		Category:           "switch",
		ProductName:        "Newly Paired Device",
		SupportedFunctions: []string{"switch_1"},
		Status:             map[string]any{"switch_1": false},
	}

	s.mu.Lock()
	s.devices = append(s.devices, device)
	s.mu.Unlock()

	return device
}

// Remove deletes the record with the given ID and returns it, or
// ErrDeviceNotFound.
func (s *Store) Remove(id string) (types.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, device := range s.devices {
		if device.ID == id {
			s.devices = append(s.devices[:i], s.devices[i+1:]...)
			return device, nil
		}
	}
	return types.Device{}, ErrDeviceNotFound
}

// Control replaces the entire status map of the matching record with
// the supplied commands. This is a replacement, not a merge: data
// points absent from the commands are dropped.
func (s *Store) Control(id string, commands map[string]any) (types.Device, error) {
	status := make(map[string]any, len(commands))
	for code, value := range commands {
		status[code] = types.NormalizeStatusValue(value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.devices {
		if s.devices[i].ID == id {
			s.devices[i].Status = status
			return s.devices[i], nil
		}
	}
	return types.Device{}, ErrDeviceNotFound
}

// List returns a snapshot of the store in insertion order. Control
// swaps whole status maps rather than mutating them, so snapshots stay
// stable after later control calls.
func (s *Store) List() []types.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Count returns the current number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// ClearAll empties the store and returns how many records were removed.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.devices)
	s.devices = nil
	return n
}

// Reset clears the store and rewinds the ID counter. Used at module
// teardown.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.devices = nil
	s.counter = initialCounter
}
