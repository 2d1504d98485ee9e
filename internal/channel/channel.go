// Package channel models the three RGB channels of a mixed color.
//
// Each channel carries a value in [0, 1], an enabled flag, and a backup that
// remembers the last active value so a disabled channel can be restored.
// A channel at rest is in one of two shapes:
//
//	enabled:  Backup == Value
//	disabled: Value == 0, Backup holds the pre-disable value
package channel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value bounds and the default level of every channel.
const (
	MinValue     = 0.0
	MaxValue     = 1.0
	DefaultValue = 1.0
)

var (
	// ErrInvalidInput is returned when a value is unparsable or outside [0, 1].
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownChannel is returned for a channel ID outside Red, Green, Blue.
	ErrUnknownChannel = errors.New("unknown channel")
)

// ID identifies one color component.
type ID int

const (
	Red ID = iota
	Green
	Blue
)

// IDs lists every channel in display order.
var IDs = [...]ID{Red, Green, Blue}

var names = [...]string{"red", "green", "blue"}

// Valid reports whether id names one of the three channels.
func (id ID) Valid() bool {
	return id >= Red && id <= Blue
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("channel(%d)", int(id))
	}
	return names[id]
}

// Title returns the capitalized channel name for labels.
func (id ID) Title() string {
	s := id.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ValueKey is the preference key holding the channel level.
func (id ID) ValueKey() string {
	return id.String()
}

// ActiveKey is the preference key holding the enabled flag.
func (id ID) ActiveKey() string {
	return id.String() + "Active"
}

// ParseID accepts a channel name or its first letter, case-insensitively.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// ValidValue reports whether v is a finite number in [MinValue, MaxValue].
func ValidValue(v float64) bool {
	return !math.IsNaN(v) && v >= MinValue && v <= MaxValue
}

// ParseValue parses text entered by a user. Anything that is not a decimal
// number in [0, 1] yields ErrInvalidInput.
func ParseValue(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	// ParseFloat also takes hex floats like 0x1p-1; only decimals are values.
	if strings.ContainsAny(trimmed, "xX") {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidInput, text)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, text)
	}
	if !ValidValue(v) {
		return 0, fmt.Errorf("%w: %q is outside [%g, %g]", ErrInvalidInput, text, MinValue, MaxValue)
	}
	return v, nil
}

// Clamp limits v to [MinValue, MaxValue]. NaN clamps to MinValue.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// FormatValue renders v the way the value field displays it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Channel is the state of one color component.
type Channel struct {
	Value   float64
	Enabled bool
	Backup  float64
}

// Default returns a fully-on, enabled channel.
func Default() Channel {
	return Channel{Value: DefaultValue, Enabled: true, Backup: DefaultValue}
}

// Effective is the channel's contribution to the composed color.
func (c Channel) Effective() float64 {
	if !c.Enabled {
		return 0
	}
	return c.Value
}

// SetValue stores v. The backup follows the value only while the channel is
// enabled; a disabled channel keeps its backup untouched.
func (c *Channel) SetValue(v float64) error {
	if !ValidValue(v) {
		return fmt.Errorf("%w: %v is outside [%g, %g]", ErrInvalidInput, v, MinValue, MaxValue)
	}
	c.Value = v
	if c.Enabled {
		c.Backup = v
	}
	return nil
}

// SetEnabled flips the channel on or off and reports whether anything
// changed. Disabling snapshots the value into the backup and zeroes it;
// enabling restores the backup.
func (c *Channel) SetEnabled(enabled bool) bool {
	if c.Enabled == enabled {
		return false
	}
	if enabled {
		c.Enabled = true
		c.Value = c.Backup
		return true
	}
	c.Backup = c.Value
	c.Value = 0
	c.Enabled = false
	return true
}

// Restorable is the level the channel returns to when enabled.
func (c Channel) Restorable() float64 {
	if c.Enabled {
		return c.Value
	}
	return c.Backup
}
