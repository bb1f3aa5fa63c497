package camera

// Config holds device-capture parameters for webcam sources.
type Config struct {
	// DeviceID selects the capture device (0 is the default webcam).
	DeviceID int `json:"device_id"`

	// Frame dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Quality is the JPEG encode quality, 1-100.
	Quality int `json:"quality"`

	// PreviewFPS is the target rate for the preview frame pump.
	PreviewFPS int `json:"preview_fps"`
}

// Capture bounds. Anything larger than 4K is a config mistake.
const (
	MaxWidth  = 3840
	MaxHeight = 2160
	MaxFPS    = 60
)

// DefaultConfig returns the recommended 720p capture configuration.
// 720p is plenty for counting containers and keeps JPEG frames small
// enough to push over the preview websocket.
func DefaultConfig() Config {
	return Config{
		DeviceID:   0,
		Width:      1280,
		Height:     720,
		Quality:    85,
		PreviewFPS: 10,
	}
}

// LowResConfig returns a 640x480 configuration for constrained devices.
func LowResConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.DeviceID < 0 {
		errs = append(errs, "device_id must be non-negative")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errs = append(errs, "width must be between 160 and 3840")
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errs = append(errs, "height must be between 120 and 2160")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, "quality must be between 1 and 100")
	}
	if c.PreviewFPS < 1 || c.PreviewFPS > MaxFPS {
		errs = append(errs, "preview_fps must be between 1 and 60")
	}

	return errs
}
