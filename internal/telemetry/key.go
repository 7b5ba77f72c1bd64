package telemetry

// Target distinguishes the two kinds of telemetry session.
type Target int

// Session targets.
const (
	TargetDevice Target = iota
	TargetApplication
)

func (t Target) String() string {
	if t == TargetDevice {
		return "device"
	}
	return "application"
}

// Key identifies a telemetry session: the device itself or one application.
// Keys are comparable and safe to use as map keys.
type Key struct {
	target Target
	appID  string
}

// DeviceKey is the key of the device-wide session.
func DeviceKey() Key {
	return Key{target: TargetDevice}
}

// AppKey is the key of the session for application appID.
func AppKey(appID string) Key {
	return Key{target: TargetApplication, appID: appID}
}

// Target returns the session kind.
func (k Key) Target() Target {
	return k.target
}

// AppID returns the application id, empty for the device key.
func (k Key) AppID() string {
	return k.appID
}

func (k Key) String() string {
	if k.target == TargetDevice {
		return "device"
	}
	return "application " + k.appID
}
