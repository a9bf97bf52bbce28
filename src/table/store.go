package table

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Snapshot persistence for offline reuse. Tables are written as gob, one
// file per measurement kind.

// Save writes the table to path.
func (t *Table) Save(path string) error {
	return saveGob(path, t)
}

// Load reads a table written by Save.
func Load(path string) (*Table, error) {
	var t Table
	if err := loadGob(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes the ping log to path.
func (p PingLog) Save(path string) error {
	return saveGob(path, p)
}

// LoadPingLog reads a ping log written by PingLog.Save.
func LoadPingLog(path string) (PingLog, error) {
	var p PingLog
	if err := loadGob(path, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func saveGob(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func loadGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
