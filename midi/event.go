package midi

// DeviceEvent is emitted when a watched keyboard connects or disconnects
type DeviceEvent struct {
	Type     DeviceEventType
	Keyboard *Keyboard // nil on disconnect
	ID       string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}
