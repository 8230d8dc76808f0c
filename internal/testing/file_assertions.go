package testing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// FileAssertions provides utilities for asserting file system state in tests
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		baseDir: baseDir,
	}
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Lstat(fullPath); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", fullPath)
	}
	return fa
}

// AssertDirExists validates that a directory exists
func (fa *FileAssertions) AssertDirExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		fa.t.Errorf("Expected directory to exist: %s", fullPath)
		return fa
	}
	if err == nil && !info.IsDir() {
		fa.t.Errorf("Expected %s to be a directory", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains specific content
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	content := fa.GetFileContent(relativePath)
	if !strings.Contains(content, expectedContent) {
		fa.t.Errorf("File %s does not contain expected content: %q", relativePath, expectedContent)
	}
	return fa
}

// AssertFileEquals validates the exact content of a file
func (fa *FileAssertions) AssertFileEquals(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	if content := fa.GetFileContent(relativePath); content != expectedContent {
		fa.t.Errorf("File %s content mismatch:\n got: %q\nwant: %q", relativePath, content, expectedContent)
	}
	return fa
}

// AssertNoFilesWithExtension validates that no file below the base
// directory ends with one of the given extensions.
func (fa *FileAssertions) AssertNoFilesWithExtension(extensions ...string) *FileAssertions {
	fa.t.Helper()
	for _, rel := range fa.ListFiles() {
		for _, ext := range extensions {
			if strings.HasSuffix(rel, "."+strings.TrimPrefix(ext, ".")) {
				fa.t.Errorf("Unexpected %s file: %s", ext, rel)
			}
		}
	}
	return fa
}

// ListFiles returns every regular file below the base directory as sorted,
// slash-separated relative paths.
func (fa *FileAssertions) ListFiles() []string {
	fa.t.Helper()
	var files []string
	err := filepath.WalkDir(fa.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(fa.baseDir, path)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		fa.t.Fatalf("Failed to list files in %s: %v", fa.baseDir, err)
	}
	sort.Strings(files)
	return files
}

// GetFileContent returns the content of a file
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	// #nosec G304 - test utility, path is controlled
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}
