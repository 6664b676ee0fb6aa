package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	paramPrefix = "params/"
	pausesParam = "system/pauses"
)

// ParamStoreSet stores a raw parameter value.
func (m *Manager) ParamStoreSet(name string, value []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("params: name must not be empty")
	}
	return m.KVPut([]byte(paramPrefix+name), value)
}

// ParamStoreGet loads a raw parameter value. The boolean reports whether the
// parameter has been set.
func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("params: name must not be empty")
	}
	var value []byte
	ok, err := m.KVGet([]byte(paramPrefix+name), &value)
	if err != nil || !ok {
		return nil, ok, err
	}
	return value, true, nil
}

// SetPauses persists the module pause toggles as JSON, keyed by module name.
func (m *Manager) SetPauses(pauses map[string]bool) error {
	encoded, err := json.Marshal(pauses)
	if err != nil {
		return fmt.Errorf("params: encode pauses: %w", err)
	}
	return m.ParamStoreSet(pausesParam, encoded)
}

// Pauses loads the module pause toggles. When unset an empty map is returned.
func (m *Manager) Pauses() (map[string]bool, error) {
	raw, ok, err := m.ParamStoreGet(pausesParam)
	if err != nil {
		return nil, fmt.Errorf("params: load pauses: %w", err)
	}
	pauses := make(map[string]bool)
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return pauses, nil
	}
	if err := json.Unmarshal(raw, &pauses); err != nil {
		return nil, fmt.Errorf("params: decode pauses: %w", err)
	}
	return pauses, nil
}

// IsPaused reports whether the named module is paused. Unreadable pause
// settings pause every module.
func (m *Manager) IsPaused(module string) bool {
	pauses, err := m.Pauses()
	if err != nil {
		slog.Error("pause settings unreadable", "module", module, "error", err)
		return true
	}
	return pauses[strings.ToLower(strings.TrimSpace(module))]
}
