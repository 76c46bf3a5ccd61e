package mock

// deviceTemplate fixes the capability schema and initial data points for
// one simulated device type. The tables mirror the device categories the
// control UI knows how to render.
type deviceTemplate struct {
	iconURL   string
	functions []string
	status    map[string]any
}

// DefaultType is used when an unknown type is requested.
const DefaultType = "switch"

var templates = map[string]deviceTemplate{
	"light": {
		iconURL:   "https://images.tuyacn.com/smart/icon/light.png",
		functions: []string{"switch_1", "bright_value", "temp_value", "colour_data"},
		status: map[string]any{
			"switch_1":     false,
			"bright_value": 255,
			"temp_value":   500,
			"work_mode":    "white",
		},
	},
	"sensor": {
		iconURL:   "https://images.tuyacn.com/smart/icon/sensor.png",
		functions: []string{"temp_current", "humidity_value", "battery_percentage"},
		status: map[string]any{
			"temp_current":       22,
			"humidity_value":     45,
			"battery_percentage": 85,
		},
	},
	"plug": {
		iconURL:   "https://images.tuyacn.com/smart/icon/plug.png",
		functions: []string{"switch_1", "cur_power", "cur_voltage"},
		status: map[string]any{
			"switch_1":    false,
			"cur_power":   0,
			"cur_voltage": 220,
		},
	},
	"fan": {
		iconURL:   "https://images.tuyacn.com/smart/icon/fan.png",
		functions: []string{"switch_1", "fan_speed", "mode"},
		status: map[string]any{
			"switch_1":  false,
			"fan_speed": 1,
			"mode":      "straight_wind",
		},
	},
	"thermostat": {
		iconURL:   "https://images.tuyacn.com/smart/icon/thermostat.png",
		functions: []string{"switch_1", "temp_set", "temp_current", "mode"},
		status: map[string]any{
			"switch_1":     false,
			"temp_set":     23,
			"temp_current": 22,
			"mode":         "auto",
		},
	},
	DefaultType: {
		iconURL:   "https://images.tuyacn.com/smart/icon/switch.png",
		functions: []string{"switch_1", "switch_2", "switch_3"},
		status: map[string]any{
			"switch_1": false,
			"switch_2": false,
			"switch_3": false,
		},
	},
}

// templateFor returns the template for a device type, falling back to
// the three-channel switch for unknown types.
func templateFor(deviceType string) deviceTemplate {
	if t, ok := templates[deviceType]; ok {
		return t
	}
	return templates[DefaultType]
}

// ControlOption describes one controllable data point of a template so
// clients can render an appropriate input widget.
type ControlOption struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Options []string `json:"options,omitempty"`
	Unit    string   `json:"unit,omitempty"`
}

// TemplateInfo is the client-facing description of one device template.
type TemplateInfo struct {
	Type           string          `json:"type"`
	Description    string          `json:"description"`
	Functions      []string        `json:"supportedFunctions"`
	InitialStatus  map[string]any  `json:"initialStatus"`
	ControlOptions []ControlOption `json:"controlOptions"`
}

func f(v float64) *float64 { return &v }

// Templates lists every available test-device template in a stable order.
func Templates() []TemplateInfo {
	return []TemplateInfo{
		{
			Type:          DefaultType,
			Description:   "Three-channel switch with independent toggles",
			Functions:     templates[DefaultType].functions,
			InitialStatus: cloneStatus(templates[DefaultType].status),
			ControlOptions: []ControlOption{
				{Key: "switch_1", Label: "Channel 1", Type: "boolean"},
				{Key: "switch_2", Label: "Channel 2", Type: "boolean"},
				{Key: "switch_3", Label: "Channel 3", Type: "boolean"},
			},
		},
		{
			Type:          "light",
			Description:   "RGB bulb with brightness and color temperature",
			Functions:     templates["light"].functions,
			InitialStatus: cloneStatus(templates["light"].status),
			ControlOptions: []ControlOption{
				{Key: "switch_1", Label: "Power", Type: "boolean"},
				{Key: "bright_value", Label: "Brightness", Type: "number", Min: f(10), Max: f(1000)},
				{Key: "temp_value", Label: "Color temperature", Type: "number", Min: f(0), Max: f(1000), Unit: "K"},
				{Key: "work_mode", Label: "Mode", Type: "enum", Options: []string{"white", "colour", "scene", "music"}},
			},
		},
		{
			Type:          "sensor",
			Description:   "Ambient sensor reporting temperature, humidity and battery",
			Functions:     templates["sensor"].functions,
			InitialStatus: cloneStatus(templates["sensor"].status),
			ControlOptions: []ControlOption{
				{Key: "temp_current", Label: "Temperature", Type: "number", Min: f(-20), Max: f(50), Unit: "°C"},
				{Key: "humidity_value", Label: "Humidity", Type: "number", Min: f(0), Max: f(100), Unit: "%"},
				{Key: "battery_percentage", Label: "Battery", Type: "number", Min: f(0), Max: f(100), Unit: "%"},
			},
		},
		{
			Type:          "plug",
			Description:   "Smart plug with power metering",
			Functions:     templates["plug"].functions,
			InitialStatus: cloneStatus(templates["plug"].status),
			ControlOptions: []ControlOption{
				{Key: "switch_1", Label: "Power", Type: "boolean"},
				{Key: "cur_power", Label: "Power draw", Type: "number", Min: f(0), Max: f(3000), Unit: "W"},
				{Key: "cur_voltage", Label: "Voltage", Type: "number", Min: f(110), Max: f(240), Unit: "V"},
			},
		},
		{
			Type:          "fan",
			Description:   "Fan with speed and mode control",
			Functions:     templates["fan"].functions,
			InitialStatus: cloneStatus(templates["fan"].status),
			ControlOptions: []ControlOption{
				{Key: "switch_1", Label: "Power", Type: "boolean"},
				{Key: "fan_speed", Label: "Speed", Type: "number", Min: f(1), Max: f(5)},
				{Key: "mode", Label: "Mode", Type: "enum", Options: []string{"straight_wind", "natural_wind", "sleep_wind"}},
			},
		},
		{
			Type:          "thermostat",
			Description:   "Thermostat with target temperature and modes",
			Functions:     templates["thermostat"].functions,
			InitialStatus: cloneStatus(templates["thermostat"].status),
			ControlOptions: []ControlOption{
				{Key: "switch_1", Label: "Power", Type: "boolean"},
				{Key: "temp_set", Label: "Target temperature", Type: "number", Min: f(16), Max: f(30), Unit: "°C"},
				{Key: "temp_current", Label: "Current temperature", Type: "number", Min: f(10), Max: f(40), Unit: "°C"},
				{Key: "mode", Label: "Mode", Type: "enum", Options: []string{"auto", "cool", "heat", "fan_only"}},
			},
		},
	}
}

func cloneStatus(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
