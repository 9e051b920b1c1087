package mirror

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Store is the local mirror tier: synchronous key/value JSON storage on
// disk, one file per key. Writes are best-effort; a full disk or an
// unwritable directory is logged and swallowed so persist paths never
// block on the mirror. It is the fast fallback checked before the remote
// store on restore.
type Store struct {
	dir string
}

func New(dir string) *Store {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Println("[MIRROR] cannot create dir:", err)
	}
	return &Store{dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Save serializes value under key. Failure is logged, never returned.
func (s *Store) Save(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[MIRROR] save %q: marshal failed: %v", key, err)
		return
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("[MIRROR] save %q: write failed: %v", key, err)
		return
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		log.Printf("[MIRROR] save %q: rename failed: %v", key, err)
	}
}

// Load reads key into the given value and reports whether it was present
// and readable. Absent is not an error.
func (s *Store) Load(key string, into interface{}) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[MIRROR] load %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		log.Printf("[MIRROR] load %q: decode failed: %v", key, err)
		return false
	}
	return true
}

// Clear removes key. Missing entries are fine.
func (s *Store) Clear(key string) {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		log.Printf("[MIRROR] clear %q: %v", key, err)
	}
}
