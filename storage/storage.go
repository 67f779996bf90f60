// Package storage provides the 256-byte persistent state store backing node
// identity, the tamper lock counter, and user saved state. It models the
// EEPROM found on typical sensor hardware: byte-addressed, slow to write,
// durable across power cycles.
package storage

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Size is the capacity of a store in bytes.
const Size = 256

// Reserved positions at the front of the store. User state starts after
// ReservedEnd; the node offsets user positions past it.
const (
	PosNodeID      uint8 = 0
	PosParentID    uint8 = 1
	PosDistance    uint8 = 2
	PosLockCounter uint8 = 3
	PosRegistered  uint8 = 4
	ReservedEnd    uint8 = 8
)

// Store reads and writes single bytes at fixed positions.
type Store interface {
	// LoadByte returns the byte at pos.
	LoadByte(pos uint8) byte

	// SaveByte durably writes value at pos.
	SaveByte(pos uint8, value byte)
}

// Memory is a volatile Store for tests and simulations. Fresh stores read
// 0xFF everywhere, matching erased EEPROM.
type Memory struct {
	mu   sync.Mutex
	data [Size]byte
}

// NewMemory returns an erased in-memory store.
func NewMemory() *Memory {
	m := &Memory{}
	for i := range m.data {
		m.data[i] = 0xFF
	}
	return m
}

// LoadByte returns the byte at pos.
func (m *Memory) LoadByte(pos uint8) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[pos]
}

// SaveByte writes value at pos.
func (m *Memory) SaveByte(pos uint8, value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[pos] = value
}

// File is a Store backed by a 256-byte flat file, flushed on every save so a
// power cut loses at most the write in flight.
type File struct {
	mu   sync.Mutex
	path string
	data [Size]byte
}

// NewFile opens or creates the store at path. A missing or short file is
// padded with 0xFF, matching erased EEPROM.
func NewFile(path string) (*File, error) {
	f := &File{path: path}
	for i := range f.data {
		f.data[i] = 0xFF
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(f.data[:], raw)
	case os.IsNotExist(err):
		if err := f.flush(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewFile",
		"path":     path,
	}).Debug("Persistent store opened")
	return f, nil
}

// LoadByte returns the byte at pos.
func (f *File) LoadByte(pos uint8) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[pos]
}

// SaveByte writes value at pos and flushes the whole image.
func (f *File) SaveByte(pos uint8, value byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[pos] == value {
		// EEPROM discipline: skip writes that change nothing.
		return
	}
	f.data[pos] = value
	if err := f.flush(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SaveByte",
			"path":     f.path,
			"pos":      pos,
			"error":    err,
		}).Error("Persistent store flush failed")
	}
}

func (f *File) flush() error {
	return os.WriteFile(f.path, f.data[:], 0o600)
}
