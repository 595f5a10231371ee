package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
)

// EntryKind selects which directory entries a scan keeps
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
)

// Scanner lists the entries of one directory level
type Scanner struct {
	Kind    EntryKind
	Include []string // glob patterns matched against the base name; empty keeps everything
	Hidden  bool     // keep dot-prefixed entries
}

// Scan returns the matching entry names in dir, sorted. A missing dir yields
// an empty list.
func (s *Scanner) Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.NewFileSystemError(err, "SCAN_FAILED",
			fmt.Sprintf("failed to read directory %s", dir)).WithContext("path", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !s.Hidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !s.matchesKind(dir, entry) {
			continue
		}
		if !s.matchesPattern(name) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

func (s *Scanner) matchesKind(dir string, entry os.DirEntry) bool {
	isDir := entry.IsDir()
	// Symlinks report their own type; follow them like a stat would.
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			return false
		}
		isDir = info.IsDir()
	}
	if s.Kind == KindDir {
		return isDir
	}
	return !isDir
}

// matchesPattern checks the name against include patterns
func (s *Scanner) matchesPattern(name string) bool {
	if len(s.Include) == 0 {
		return true
	}
	for _, pattern := range s.Include {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// ScanResult splits a versions directory into record files and everything else
type ScanResult struct {
	Codes  []int64  // ascending
	Others []string // non-numeric regular files, sorted
}

// scanVersions reads a versions directory. Only canonical decimal names
// count as version files.
func scanVersions(dir string) (*ScanResult, error) {
	files, err := (&Scanner{Kind: KindFile}).Scan(dir)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Codes: []int64{}, Others: []string{}}
	for _, name := range files {
		if code, ok := ParseVersionFileName(name); ok {
			result.Codes = append(result.Codes, code)
		} else {
			result.Others = append(result.Others, name)
		}
	}
	sort.Slice(result.Codes, func(i, j int) bool { return result.Codes[i] < result.Codes[j] })
	return result, nil
}

// ParseVersionFileName returns the version code a record file name stands for
func ParseVersionFileName(name string) (int64, bool) {
	code, ok := parseDigits(name)
	if !ok || strconv.FormatInt(code, 10) != name {
		return 0, false
	}
	return code, true
}

// paddedVersionCode reports names like "010" that read as a code but are
// never looked up under that name.
func paddedVersionCode(name string) (int64, bool) {
	code, ok := parseDigits(name)
	if !ok || strconv.FormatInt(code, 10) == name {
		return 0, false
	}
	return code, true
}

func parseDigits(name string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	code, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}
