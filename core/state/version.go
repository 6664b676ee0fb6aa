package state

import (
	"errors"
	"fmt"
	"math"
)

// SchemaVersion identifies the record layout this binary reads and writes.
// Increment it whenever a stored record changes shape.
const SchemaVersion uint32 = 1

var (
	schemaVersionKey = []byte("market/schema/version")
	// ErrSchemaVersionMismatch indicates the ledger was written by a binary
	// with a different record layout.
	ErrSchemaVersionMismatch = errors.New("state: schema version mismatch")
)

// SetSchemaVersion records the provided schema version in state.
func (m *Manager) SetSchemaVersion(version uint32) error {
	if m == nil {
		return fmt.Errorf("state: manager unavailable")
	}
	return m.KVPut(schemaVersionKey, uint64(version))
}

// SchemaVersion returns the stored schema version and whether one was
// present.
func (m *Manager) SchemaVersion() (uint32, bool, error) {
	if m == nil {
		return 0, false, fmt.Errorf("state: manager unavailable")
	}
	var stored uint64
	ok, err := m.KVGet(schemaVersionKey, &stored)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	if stored > uint64(math.MaxUint32) {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// EnsureSchemaVersion stamps an unversioned ledger with SchemaVersion and
// fails when the stored version differs from it.
func EnsureSchemaVersion(m *Manager) error {
	version, ok, err := m.SchemaVersion()
	if err != nil {
		return err
	}
	if !ok {
		return m.SetSchemaVersion(SchemaVersion)
	}
	if version != SchemaVersion {
		return fmt.Errorf("%w: on-disk=%d expected=%d", ErrSchemaVersionMismatch, version, SchemaVersion)
	}
	return nil
}
