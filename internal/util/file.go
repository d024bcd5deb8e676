package util

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"
)

// CheckFilePermissionsForExecution checks whether the given filePath owner, group and permissions
// are safe to use this file for execution by act2go.
func CheckFilePermissionsForExecution(filePath string) (bool, error) {
	var file = filePath

	file, err := filepath.EvalSymlinks(file)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(file)
	if os.IsNotExist(err) {
		return false, errors.New("file not found")
	}

	stat := info.Sys().(*syscall.Stat_t)
	if stat.Uid != 0 {
		return false, errors.New("owner is not root")
	}

	if stat.Gid != 0 {
		mode := info.Mode()
		groupWrite := mode & (os.FileMode(0o020))
		if groupWrite != 0 {
			return false, errors.New("group is not root but has write permission")
		}
	}

	otherWrite := info.Mode() & (os.FileMode(0o002))
	if otherWrite != 0 {
		return false, errors.New("others have write permission")
	}

	return true, nil
}

// ExpandHomePath resolves a leading "~" to the home directory of the current user
func ExpandHomePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	currentUser, err := user.Current()
	if err != nil {
		return path, err
	}
	return filepath.Join(currentUser.HomeDir, path[1:]), nil
}

// ReadFloatFromFile reads a single number from the given file
func ReadFloatFromFile(path string) (value float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(data))
	if len(text) <= 0 {
		return 0, fmt.Errorf("file is empty: %s", path)
	}
	return strconv.ParseFloat(text, 64)
}

func resolvePath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// WriteFloatToFileAtomic replaces the content of the given file with a single number
func WriteFloatToFileAtomic(value float64, path string) error {
	valueAsString := strconv.FormatFloat(value, 'f', 2, 64)
	return WriteFileAtomic([]byte(valueAsString), path)
}

// WriteFileAtomic replaces the content of the given file, readers never observe a partial write
func WriteFileAtomic(data []byte, path string) error {
	evaluatedPath, err := resolvePath(path)
	if len(evaluatedPath) > 0 && err == nil {
		path = evaluatedPath
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
