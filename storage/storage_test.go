package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadsErased(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, byte(0xFF), m.LoadByte(0))
	assert.Equal(t, byte(0xFF), m.LoadByte(Size-1))
}

func TestMemorySaveLoad(t *testing.T) {
	m := NewMemory()
	m.SaveByte(PosNodeID, 42)
	m.SaveByte(ReservedEnd, 7)

	assert.Equal(t, byte(42), m.LoadByte(PosNodeID))
	assert.Equal(t, byte(7), m.LoadByte(ReservedEnd))
	assert.Equal(t, byte(0xFF), m.LoadByte(PosLockCounter), "other positions stay erased")
}

func TestFileCreatesErasedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	f, err := NewFile(path)
	require.NoError(t, err)

	assert.Equal(t, byte(0xFF), f.LoadByte(0))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, Size)
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")

	f, err := NewFile(path)
	require.NoError(t, err)
	f.SaveByte(PosNodeID, 17)
	f.SaveByte(PosLockCounter, 2)

	reopened, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(17), reopened.LoadByte(PosNodeID))
	assert.Equal(t, byte(2), reopened.LoadByte(PosLockCounter))
	assert.Equal(t, byte(0xFF), reopened.LoadByte(PosRegistered))
}

func TestFilePadsShortImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, os.WriteFile(path, []byte{9, 8}, 0o600))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(9), f.LoadByte(0))
	assert.Equal(t, byte(8), f.LoadByte(1))
	assert.Equal(t, byte(0xFF), f.LoadByte(2))
}

func TestFileSkipsNoOpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	f, err := NewFile(path)
	require.NoError(t, err)
	f.SaveByte(PosNodeID, 17)

	// Corrupt the backing file, then repeat the same write. The skip means
	// the image on disk must stay corrupt.
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o600))
	f.SaveByte(PosNodeID, 17)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("tampered"), raw)
}
