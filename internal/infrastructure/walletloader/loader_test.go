package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewSafeAddressFile(filepath.Join(t.TempDir(), "absent.txt"), nil)

	addr, err := store.Load()

	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestLoadSkipsCommentsAndInvalidLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safe.txt")
	content := "# header\n\nnot-an-address\n0xABC\n0x2222222222222222222222222222222222222222\n0x3333333333333333333333333333333333333333\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var skipped int
	store := NewSafeAddressFile(path, func(msg string, args ...any) {
		if msg == "Skipping invalid safe address format" {
			skipped++
		}
	})

	addr, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", addr)
	assert.Equal(t, 2, skipped)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "safe.txt")
	store := NewSafeAddressFile(path, nil)
	safe := common.HexToAddress("0x4444444444444444444444444444444444444444")

	require.NoError(t, store.Save(safe))
	addr, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, safe.Hex(), addr)

	other := common.HexToAddress("0x5555555555555555555555555555555555555555")
	require.NoError(t, store.Save(other))
	addr, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, other.Hex(), addr)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
