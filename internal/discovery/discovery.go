package discovery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are the catalog globs used when none are configured.
var DefaultPatterns = []string{"data/anime.json"}

// dirPattern is expanded under every directory argument.
const dirPattern = "**/*.{json,yaml,yml}"

// File represents a discovered catalog file with its metadata
type File struct {
	Path     string
	RelPath  string
	Size     int64
	Type     FileType
	Contents []byte
}

// FileType categorizes discovered files by encoding.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeJSON
	FileTypeYAML
)

// String returns the human-readable name of the file type.
func (ft FileType) String() string {
	switch ft {
	case FileTypeJSON:
		return "json"
	case FileTypeYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFileType converts a string to a FileType.
// Valid values: json, yaml, yml.
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FileTypeJSON, nil
	case "yaml", "yml":
		return FileTypeYAML, nil
	default:
		return FileTypeUnknown, fmt.Errorf("invalid type %q: valid types are json, yaml", s)
	}
}

// DetectFileType determines the encoding of a catalog file from its extension.
func DetectFileType(path string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FileTypeJSON, nil
	case ".yaml", ".yml":
		return FileTypeYAML, nil
	case "":
		return FileTypeUnknown, fmt.Errorf("unsupported file: %s has no extension. rekonime reads .json, .yaml and .yml catalogs", filepath.Base(path))
	default:
		return FileTypeUnknown, fmt.Errorf("unsupported file type: %s. rekonime reads .json, .yaml and .yml catalogs", ext)
	}
}

// ValidateFilePath performs comprehensive validation of a catalog path.
//
// It checks that the file exists, is a regular file (symlinks resolved),
// is not empty and is not binary. The absolute path is returned.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		realPath, evalErr := filepath.EvalSymlinks(absPath)
		if evalErr != nil {
			return "", fmt.Errorf("cannot resolve symlink %s: %w", absPath, evalErr)
		}
		absPath = realPath
		info, err = os.Stat(absPath)
		if err != nil {
			return "", fmt.Errorf("symlink target inaccessible: %s: %w", absPath, err)
		}
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath       string
	followSymlinks bool
}

// NewFileDiscovery creates a new FileDiscovery instance. Relative patterns
// are resolved against rootPath.
func NewFileDiscovery(rootPath string, followSymlinks bool) *FileDiscovery {
	return &FileDiscovery{
		rootPath:       rootPath,
		followSymlinks: followSymlinks,
	}
}

// DiscoverFiles expands each argument into catalog files. An argument may be
// a file, a directory (searched recursively for json and yaml files) or a
// doublestar glob. Results are deduplicated and sorted by path so the catalog
// order is stable across runs.
func (fd *FileDiscovery) DiscoverFiles(patterns []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := make(map[string]bool)
	var files []File
	for _, pattern := range patterns {
		matches, err := fd.expand(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			f, ok := fd.processMatch(match)
			if !ok || seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// expand resolves one argument into candidate paths relative to rootPath.
func (fd *FileDiscovery) expand(pattern string) ([]string, error) {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(fd.rootPath, pattern)
	}

	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			// Explicit files are always read, symlinked or not.
			if _, err := DetectFileType(full); err != nil {
				return nil, err
			}
			abs, err := ValidateFilePath(full)
			if err != nil {
				return nil, err
			}
			return []string{abs}, nil
		}
		full = filepath.Join(full, dirPattern)
	} else if !hasMeta(pattern) {
		return nil, fmt.Errorf("catalog not found: %s", full)
	}

	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
	}
	return matches, nil
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	ft, err := DetectFileType(match)
	if err != nil {
		return File{}, false
	}

	info, err := os.Lstat(match)
	if err != nil || info.IsDir() {
		return File{}, false
	}

	path := match
	if info.Mode()&os.ModeSymlink != 0 {
		resolved, resolvedInfo, ok := fd.resolveSymlink(match)
		if !ok {
			return File{}, false
		}
		path = resolved
		info = resolvedInfo
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return File{}, false
	}

	relPath, err := filepath.Rel(fd.rootPath, path)
	if err != nil {
		relPath = path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}

	return File{
		Path:     path,
		RelPath:  filepath.ToSlash(relPath),
		Size:     info.Size(),
		Type:     ft,
		Contents: contents,
	}, true
}

// resolveSymlink follows a symlink if configured, returning the resolved path and info.
// Returns false if the symlink should be skipped.
func (fd *FileDiscovery) resolveSymlink(fullPath string) (string, os.FileInfo, bool) {
	if !fd.followSymlinks {
		return "", nil, false
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return "", nil, false
	}

	info, err := os.Stat(realPath)
	if err != nil || info.IsDir() {
		return "", nil, false
	}

	return realPath, info, true
}

// hasMeta reports whether pattern contains glob syntax.
func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
