package project

import (
	"os"
	"path/filepath"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/config"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/discovery"
)

// Info contains information about the detected project.
// Named 'Info' instead of 'ProjectInfo' to avoid stuttering (project.Info vs project.ProjectInfo).
type Info struct {
	Root       string
	ConfigFile string   // first of config.ConfigPaths present, relative to Root
	Catalogs   []string // default catalog files present, relative to Root
}

// FindProjectRoot searches for a project root starting from the given path
// and climbing up the directory tree if needed. A directory is a root when it
// holds a config file or a default catalog.
func FindProjectRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	// Default to the start directory if no project root found
	return absPath, nil
}

func isProjectRoot(path string) bool {
	info := Detect(path)
	return info.ConfigFile != "" || len(info.Catalogs) > 0
}

// Detect reports the project markers present directly in rootPath.
func Detect(rootPath string) *Info {
	info := &Info{Root: rootPath}
	for _, name := range config.ConfigPaths {
		if isFile(filepath.Join(rootPath, name)) {
			info.ConfigFile = name
			break
		}
	}
	for _, pattern := range discovery.DefaultPatterns {
		if isFile(filepath.Join(rootPath, filepath.FromSlash(pattern))) {
			info.Catalogs = append(info.Catalogs, pattern)
		}
	}
	return info
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
