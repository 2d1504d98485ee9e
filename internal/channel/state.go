package channel

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorState is the full mixer state: one Channel per component.
type ColorState struct {
	Red   Channel
	Green Channel
	Blue  Channel
}

// DefaultState is white: every channel at 1.0 and enabled.
func DefaultState() ColorState {
	return ColorState{Red: Default(), Green: Default(), Blue: Default()}
}

// At returns a pointer to the channel for id, or nil if id is unknown.
func (s *ColorState) At(id ID) *Channel {
	switch id {
	case Red:
		return &s.Red
	case Green:
		return &s.Green
	case Blue:
		return &s.Blue
	}
	return nil
}

// Get returns a copy of the channel for id.
func (s ColorState) Get(id ID) Channel {
	if c := s.At(id); c != nil {
		return *c
	}
	return Channel{}
}

// Effective returns the composed display color.
func (s ColorState) Effective() (r, g, b float64) {
	return s.Red.Effective(), s.Green.Effective(), s.Blue.Effective()
}

// Colorful converts the effective color for rendering.
func (s ColorState) Colorful() colorful.Color {
	r, g, b := s.Effective()
	return colorful.Color{R: r, G: g, B: b}
}

// Hex renders the effective color as #rrggbb.
func (s ColorState) Hex() string {
	return s.Colorful().Hex()
}

func (s ColorState) String() string {
	return fmt.Sprintf("%s r=%s g=%s b=%s", s.Hex(),
		describe(s.Red), describe(s.Green), describe(s.Blue))
}

func describe(c Channel) string {
	if c.Enabled {
		return FormatValue(c.Value)
	}
	return "off(" + FormatValue(c.Backup) + ")"
}
