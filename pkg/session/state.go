package session

import "fmt"

// State is the capture-session lifecycle position.
// Exactly one state is active at any time.
type State int

const (
	// StateIdle: no camera, no image, no result.
	StateIdle State = iota

	// StateCapturing: camera requested, live preview, waiting for the
	// user to capture.
	StateCapturing

	// StateCaptured: one still image stored, analysis about to start.
	StateCaptured

	// StateProcessing: analysis in flight for the current cycle.
	StateProcessing

	// StateResult: counts and deposit value committed.
	StateResult
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateCaptured:
		return "captured"
	case StateProcessing:
		return "processing"
	case StateResult:
		return "result"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name into JSON snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the read-only view published to renderers.
// Counts and deposit fields are zero outside StateResult; HasImage is
// true exactly in the Captured, Processing and Result states.
type Snapshot struct {
	State        State  `json:"state"`
	CaptureID    string `json:"capture_id,omitempty"`
	BottleCount  int    `json:"bottle_count"`
	CanCount     int    `json:"can_count"`
	DepositCents int    `json:"deposit_cents"`
	DepositText  string `json:"deposit_text"`
	Degraded     bool   `json:"degraded,omitempty"`
	Processing   bool   `json:"processing"`
	CameraReady  bool   `json:"camera_ready"`
	HasImage     bool   `json:"has_image"`
}
