package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huanfeng/updategen/internal/errors"
)

// writeJSON marshals v and atomically replaces path with the result. The
// temp file lives next to the target so the rename never crosses devices.
func writeJSON(path string, v interface{}, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeUnknown, "MARSHAL_FAILED",
			fmt.Sprintf("failed to marshal %s", filepath.Base(path)))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileSystemError(err, "MKDIR_FAILED",
			fmt.Sprintf("failed to create directory %s", dir)).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewFileSystemError(err, "WRITE_FAILED",
			fmt.Sprintf("failed to create temp file for %s", path)).WithContext("path", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, "WRITE_FAILED",
			fmt.Sprintf("failed to write %s", path)).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, "WRITE_FAILED",
			fmt.Sprintf("failed to write %s", path)).WithContext("path", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, "WRITE_FAILED",
			fmt.Sprintf("failed to set permissions on %s", path)).WithContext("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, "RENAME_FAILED",
			fmt.Sprintf("failed to replace %s", path)).WithContext("path", path)
	}
	return nil
}

// readFile reads path, translating a missing file into a NotFound error
func readFile(path, code, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(code, fmt.Sprintf("%s not found", what)).
				WithContext("path", path)
		}
		return nil, errors.NewFileSystemError(err, "READ_FAILED",
			fmt.Sprintf("failed to read %s", what)).WithContext("path", path)
	}
	return data, nil
}

// removeIfExists deletes path, tolerating a file that is already gone
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewFileSystemError(err, "REMOVE_FAILED",
			fmt.Sprintf("failed to remove %s", path)).WithContext("path", path)
	}
	return nil
}

// withPath attaches the offending file to a decode error
func withPath(err error, path string) error {
	var ue *errors.UpdateError
	if e, ok := err.(*errors.UpdateError); ok {
		ue = e
	} else {
		ue = errors.WrapError(err, errors.ErrorTypeMalformedRecord, "INVALID_JSON", "invalid JSON")
	}
	return ue.WithContext("path", path)
}
