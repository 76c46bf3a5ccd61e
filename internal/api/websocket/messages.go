package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Device catalog messages
	MessageTypeDeviceAdded      MessageType = "device_added"
	MessageTypeDeviceRemoved    MessageType = "device_removed"
	MessageTypeDeviceControlled MessageType = "device_controlled"

	// Pairing session messages
	MessageTypePairingStarted   MessageType = "pairing_started"
	MessageTypePairingCompleted MessageType = "pairing_completed"
	MessageTypePairingStopped   MessageType = "pairing_stopped"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DeviceEventData carries device catalog change data.
type DeviceEventData struct {
	DeviceID string         `json:"device_id"`
	Name     string         `json:"name,omitempty"`
	Status   map[string]any `json:"status,omitempty"`
}

// PairingEventData carries pairing session transition data.
type PairingEventData struct {
	Mode     string `json:"mode,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewDeviceAddedMessage(deviceID, name string) Message {
	return NewMessage(MessageTypeDeviceAdded, DeviceEventData{
		DeviceID: deviceID,
		Name:     name,
	})
}

func NewDeviceRemovedMessage(deviceID string) Message {
	return NewMessage(MessageTypeDeviceRemoved, DeviceEventData{
		DeviceID: deviceID,
	})
}

func NewDeviceControlledMessage(deviceID string, status map[string]any) Message {
	return NewMessage(MessageTypeDeviceControlled, DeviceEventData{
		DeviceID: deviceID,
		Status:   status,
	})
}

func NewPairingMessage(msgType MessageType, mode, deviceID string) Message {
	return NewMessage(msgType, PairingEventData{
		Mode:     mode,
		DeviceID: deviceID,
	})
}
