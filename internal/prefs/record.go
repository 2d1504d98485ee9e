// Package prefs persists mixer state to a durable key-value preference
// store. The record is six flat keys:
//
//	red, green, blue                  float levels
//	redActive, greenActive, blueActive enabled flags
//
// Backups are not stored. The level written for a disabled channel is its
// backup, so re-enabling after a restart restores the last active value.
package prefs

import (
	"context"
	"strconv"

	"colormaker/internal/channel"
	"colormaker/internal/logging"
)

// Record is the durable form of a ColorState.
type Record struct {
	Red         float64
	Green       float64
	Blue        float64
	RedActive   bool
	GreenActive bool
	BlueActive  bool
}

// DefaultRecord is the record of channel.DefaultState.
func DefaultRecord() Record {
	return Record{
		Red: channel.DefaultValue, Green: channel.DefaultValue, Blue: channel.DefaultValue,
		RedActive: true, GreenActive: true, BlueActive: true,
	}
}

// Keys returns the six preference keys in a stable order.
func Keys() []string {
	keys := make([]string, 0, 2*len(channel.IDs))
	for _, id := range channel.IDs {
		keys = append(keys, id.ValueKey(), id.ActiveKey())
	}
	return keys
}

func (r *Record) fields(id channel.ID) (*float64, *bool) {
	switch id {
	case channel.Red:
		return &r.Red, &r.RedActive
	case channel.Green:
		return &r.Green, &r.GreenActive
	case channel.Blue:
		return &r.Blue, &r.BlueActive
	}
	return nil, nil
}

// RecordFromState captures s for storage.
func RecordFromState(s channel.ColorState) Record {
	var r Record
	for _, id := range channel.IDs {
		level, active := r.fields(id)
		c := s.Get(id)
		*level = c.Restorable()
		*active = c.Enabled
	}
	return r
}

// State rebuilds a ColorState. The backup is the loaded level; a disabled
// channel is normalized to value 0.
func (r Record) State() channel.ColorState {
	var s channel.ColorState
	for _, id := range channel.IDs {
		level, active := r.fields(id)
		c := s.At(id)
		c.Backup = *level
		c.Enabled = *active
		if *active {
			c.Value = *level
		}
	}
	return s
}

// Encode flattens the record into preference key/value strings.
func (r Record) Encode() map[string]string {
	m := make(map[string]string, 2*len(channel.IDs))
	for _, id := range channel.IDs {
		level, active := r.fields(id)
		m[id.ValueKey()] = strconv.FormatFloat(*level, 'g', -1, 64)
		m[id.ActiveKey()] = strconv.FormatBool(*active)
	}
	return m
}

// DecodeRecord reads a record from preference strings. Every key falls back
// to its default on its own when missing, unparsable, or out of range.
func DecodeRecord(m map[string]string) Record {
	r := DefaultRecord()
	for _, id := range channel.IDs {
		level, active := r.fields(id)
		if raw, ok := m[id.ValueKey()]; ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err == nil && channel.ValidValue(v) {
				*level = v
			} else {
				logging.StoreDebug("ignoring %s=%q, using default", id.ValueKey(), raw)
			}
		}
		if raw, ok := m[id.ActiveKey()]; ok {
			b, err := strconv.ParseBool(raw)
			if err == nil {
				*active = b
			} else {
				logging.StoreDebug("ignoring %s=%q, using default", id.ActiveKey(), raw)
			}
		}
	}
	return r
}

// Load reads the record from b. On a read error it returns the defaults
// along with the error so the caller can log it and carry on.
func Load(ctx context.Context, b Backend) (Record, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Load")
	defer timer.Stop()

	m, err := b.GetAll(ctx)
	if err != nil {
		return DefaultRecord(), err
	}
	return DecodeRecord(m), nil
}
