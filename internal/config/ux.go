package config

// UXConfig holds terminal renderer settings.
type UXConfig struct {
	// Step is how far one arrow key moves a channel slider.
	Step float64 `yaml:"step" json:"step"`

	// CoarseStep is the shift+arrow / page step.
	CoarseStep float64 `yaml:"coarse_step" json:"coarse_step"`

	// NoticeDuration is how long transient notices stay visible, e.g. "2s".
	NoticeDuration string `yaml:"notice_duration" json:"notice_duration"`
}
