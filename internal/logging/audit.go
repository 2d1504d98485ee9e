package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of state transition in the audit trail.
type AuditEventType string

const (
	AuditValueSet      AuditEventType = "value_set"
	AuditEnabledSet    AuditEventType = "enabled_set"
	AuditReset         AuditEventType = "reset"
	AuditInputRejected AuditEventType = "input_rejected"
	AuditLoaded        AuditEventType = "loaded"
	AuditSaveFailed    AuditEventType = "save_failed"
)

// AuditEvent is one JSON line in the audit trail.
type AuditEvent struct {
	Type    AuditEventType
	Channel string
	Value   float64
	Enabled bool
	Changed bool
	Hex     string
	Input   string
	Error   string
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e AuditEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if e.Channel != "" {
		enc.AddString("channel", e.Channel)
	}
	switch e.Type {
	case AuditValueSet:
		enc.AddFloat64("value", e.Value)
	case AuditEnabledSet:
		enc.AddBool("enabled", e.Enabled)
		enc.AddBool("changed", e.Changed)
	case AuditInputRejected:
		enc.AddString("input", e.Input)
	}
	if e.Hex != "" {
		enc.AddString("hex", e.Hex)
	}
	if e.Error != "" {
		enc.AddString("error", e.Error)
	}
	return nil
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditMu    sync.Mutex
	auditZap   = zap.NewNop()
	auditClose func()
)

// AuditLogger writes state transitions to the audit trail. It is a no-op
// until an audit file is configured.
type AuditLogger struct {
	sessionID string
}

func initAudit(path string) error {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditClose != nil {
		_ = auditZap.Sync()
		auditClose()
		auditClose = nil
		auditZap = zap.NewNop()
	}
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	ws, closeFn, err := zap.Open(path)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	auditZap = zap.New(zapcore.NewCore(enc, ws, zapcore.InfoLevel))
	auditClose = closeFn
	return nil
}

// UseAuditCore routes the audit trail to core. Tests use it with
// zaptest/observer.
func UseAuditCore(core zapcore.Core) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditZap = zap.New(core)
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	_ = auditZap.Sync()
	if auditClose != nil {
		auditClose()
		auditClose = nil
	}
	auditZap = zap.NewNop()
}

// Audit returns an audit logger with no session attached.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	l := auditZap
	auditMu.Unlock()

	fields := []zap.Field{zap.Object("event", event)}
	if a.sessionID != "" {
		fields = append(fields, zap.String("session", a.sessionID))
	}
	l.Info(string(event.Type), fields...)
}

// ValueSet records a channel value change.
func (a *AuditLogger) ValueSet(channel string, value float64, hex string) {
	a.Log(AuditEvent{Type: AuditValueSet, Channel: channel, Value: value, Hex: hex})
}

// EnabledSet records a toggle, including no-op toggles.
func (a *AuditLogger) EnabledSet(channel string, enabled, changed bool, hex string) {
	a.Log(AuditEvent{Type: AuditEnabledSet, Channel: channel, Enabled: enabled, Changed: changed, Hex: hex})
}

// Reset records a reset of every channel.
func (a *AuditLogger) Reset(hex string) {
	a.Log(AuditEvent{Type: AuditReset, Hex: hex})
}

// InputRejected records text that failed validation.
func (a *AuditLogger) InputRejected(channel, input string, err error) {
	a.Log(AuditEvent{Type: AuditInputRejected, Channel: channel, Input: input, Error: err.Error()})
}

// Loaded records the state hydrated at startup.
func (a *AuditLogger) Loaded(hex string, err error) {
	e := AuditEvent{Type: AuditLoaded, Hex: hex}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}

// SaveFailed records a persistence write that did not land.
func (a *AuditLogger) SaveFailed(err error) {
	a.Log(AuditEvent{Type: AuditSaveFailed, Error: err.Error()})
}
