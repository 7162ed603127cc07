package walletloader

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aave_topup/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

const defaultSafeFilePath = "data/safe_wallet.txt"

// SafeAddressFile implements port.SafeAddressStore on a plain-text file holding one address.
type SafeAddressFile struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
}

// NewSafeAddressFile creates a store backed by filePath, or data/safe_wallet.txt when empty.
func NewSafeAddressFile(filePath string, loggerInfo func(msg string, args ...any)) port.SafeAddressStore {
	if filePath == "" {
		filePath = defaultSafeFilePath
	}
	return &SafeAddressFile{
		filePath:   filePath,
		loggerInfo: loggerInfo,
	}
}

// Load returns the first valid address in the file. A missing file yields "" and no error.
func (l *SafeAddressFile) Load() (string, error) {
	file, err := os.Open(l.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open safe wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !(strings.HasPrefix(line, "0x") && len(line) == 42) {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping invalid safe address format", "file", l.filePath, "line_number", lineNum, "address", line)
			}
			continue
		}
		if l.loggerInfo != nil {
			l.loggerInfo("Safe wallet address loaded from file", "path", l.filePath, "address", line)
		}
		return line, nil
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error scanning safe wallet file %s: %w", l.filePath, err)
	}
	return "", nil
}

// Save replaces the file content with address.
func (l *SafeAddressFile) Save(address common.Address) error {
	if dir := filepath.Dir(l.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", l.filePath, err)
		}
	}

	content := fmt.Sprintf("# Safe wallet created %s\n%s\n", time.Now().UTC().Format(time.RFC3339), address.Hex())
	tmp := l.filePath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write safe wallet file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, l.filePath); err != nil {
		return fmt.Errorf("failed to replace safe wallet file %s: %w", l.filePath, err)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Safe wallet address saved", "path", l.filePath, "address", address.Hex())
	}
	return nil
}
