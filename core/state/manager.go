package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"nftmarket/storage/trie"
)

// Manager reads and writes ledger records on top of the state trie. Values are
// RLP encoded and stored under the keccak256 hash of their logical key.
//
// Manager is not safe for concurrent use; callers serialise access.
type Manager struct {
	trie      *trie.Trie
	snapshots []*trie.Snapshot
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut stores the RLP encoding of value under the supplied key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.trie.Update(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.trie.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.trie.Delete(kvKey(key))
}

// Snapshot records the current state and returns an identifier that can be
// handed to RevertToSnapshot. Snapshots nest.
func (m *Manager) Snapshot() int {
	m.snapshots = append(m.snapshots, m.trie.Snapshot())
	return len(m.snapshots) - 1
}

// RevertToSnapshot discards every change made since the snapshot with the
// given id was taken, together with any snapshots taken after it.
func (m *Manager) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(m.snapshots) {
		return fmt.Errorf("state: snapshot %d does not exist", id)
	}
	m.trie.Restore(m.snapshots[id])
	m.snapshots = m.snapshots[:id]
	return nil
}

// DiscardSnapshot releases the snapshot with the given id and every later one
// while keeping the changes made since.
func (m *Manager) DiscardSnapshot(id int) {
	if id < 0 || id >= len(m.snapshots) {
		return
	}
	m.snapshots = m.snapshots[:id]
}

// Hash returns the state root including uncommitted changes.
func (m *Manager) Hash() common.Hash {
	return m.trie.Hash()
}

// Commit flushes pending changes to the backing database and returns the new
// state root. Outstanding snapshots are invalidated.
func (m *Manager) Commit(slot uint64) (common.Hash, error) {
	root, err := m.trie.Commit(m.trie.Root(), slot)
	if err != nil {
		return common.Hash{}, err
	}
	m.snapshots = nil
	return root, nil
}
