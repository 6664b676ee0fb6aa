package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	gethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store backing the ledger.
// Besides plain metadata (such as the last committed root) every backend
// hands out the trie node database the state trie is built on.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	TrieDB() *triedb.Database
	Close()
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	nodes  ethdb.Database
	trieDB *triedb.Database
}

func NewMemDB() *MemDB {
	nodes := rawdb.NewMemoryDatabase()
	return &MemDB{
		data:   make(map[string][]byte),
		nodes:  nodes,
		trieDB: triedb.NewDatabase(nodes, triedb.HashDefaults),
	}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// TrieDB returns the in-memory trie node database.
func (db *MemDB) TrieDB() *triedb.Database {
	return db.trieDB
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	db.trieDB.Close()
	db.nodes.Close()
}

// --- Persistent DB ---

// LevelDB is a persistent key-value store using LevelDB. Trie nodes and
// metadata share the same on-disk database.
type LevelDB struct {
	kv     *gethleveldb.Database
	disk   ethdb.Database
	trieDB *triedb.Database
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	kv, err := gethleveldb.New(path, 16, 16, "nftmarket/db/", false)
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb %s: %w", path, err)
	}
	disk := rawdb.NewDatabase(kv)
	return &LevelDB{
		kv:     kv,
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, triedb.HashDefaults),
	}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.kv.Put(key, value)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := ldb.kv.Get(key)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

// TrieDB returns the trie node database persisted in LevelDB.
func (ldb *LevelDB) TrieDB() *triedb.Database {
	return ldb.trieDB
}

// Close flushes the trie database and closes the database connection.
func (ldb *LevelDB) Close() {
	ldb.trieDB.Close()
	ldb.disk.Close()
}
