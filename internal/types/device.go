package types

// Device is the canonical, backend-agnostic record for one smart-home
// device. Both the cloud adapter and the mock store produce this shape,
// so downstream consumers never branch on where a device came from.
type Device struct {
	ID                 string         `json:"devId"`
	Name               string         `json:"name"`
	IconURL            string         `json:"iconUrl"`
	Online             bool           `json:"isOnline"`
	LocalOnline        bool           `json:"isLocalOnline"`
	ProductID          string         `json:"productId"`
	UUID               string         `json:"uuid"`
	Category           string         `json:"category"`
	ProductName        string         `json:"productName"`
	IsSubDevice        bool           `json:"isSub"`
	IsShared           bool           `json:"isShare"`
	SupportedFunctions []string       `json:"supportedFunctions"`
	Status             map[string]any `json:"status"`
}

// RemoteDevicePayload mirrors one device entry inside the cloud
// service's home-detail response. Optional fields arrive as zero values.
type RemoteDevicePayload struct {
	DevID       string         `json:"devId"`
	Name        string         `json:"name"`
	IconURL     string         `json:"iconUrl"`
	IsOnline    bool           `json:"isOnline"`
	LocalOnline bool           `json:"isLocalOnline"`
	ProductID   string         `json:"productId"`
	UUID        string         `json:"uuid"`
	Category    string         `json:"category"`
	IsShare     bool           `json:"isShare"`
	Schema      map[string]any `json:"schema"`
	DPs         map[string]any `json:"dps"`
}

// DefaultDeviceName is used when the source backend has no display name.
const DefaultDeviceName = "Unnamed Device"

// NewRemoteDevice normalizes a cloud payload into a Device. Absent
// strings become empty, booleans false, collections empty but non-nil.
// productName carries the productId because the cloud home-detail
// response has no separate product name field.
func NewRemoteDevice(p RemoteDevicePayload) Device {
	name := p.Name
	if name == "" {
		name = DefaultDeviceName
	}

	functions := make([]string, 0, len(p.Schema))
	for code := range p.Schema {
		functions = append(functions, code)
	}

	status := make(map[string]any, len(p.DPs))
	for code, value := range p.DPs {
		if value == nil {
			continue
		}
		status[code] = NormalizeStatusValue(value)
	}

	return Device{
		ID:                 p.DevID,
		Name:               name,
		IconURL:            p.IconURL,
		Online:             p.IsOnline,
		LocalOnline:        p.LocalOnline,
		ProductID:          p.ProductID,
		UUID:               p.UUID,
		Category:           p.Category,
		ProductName:        p.ProductID,
		IsSubDevice:        false, // sub-devices are not supported
		IsShared:           p.IsShare,
		SupportedFunctions: functions,
		Status:             status,
	}
}

// NormalizeStatusValue coerces a data-point value to one of the four
// status variants: bool, number or string. JSON decoding already yields
// bool/float64/string; other numeric widths are widened to float64.
func NormalizeStatusValue(v any) any {
	switch val := v.(type) {
	case bool, string, float64, int, int64:
		return val
	case float32:
		return float64(val)
	default:
		return v
	}
}
