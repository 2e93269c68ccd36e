// Package filesystem manages the transient local file area shared by
// concurrent requests.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"yt-mp3-service/application/download"

	"github.com/google/uuid"
)

// maxTitleLength bounds the sanitized title portion of a filename
const maxTitleLength = 80

// Manager implements download.FileStore over a single working directory.
// Paths embed a random id so concurrent requests never collide.
type Manager struct {
	workDir string
}

// NewManager creates a manager rooted at workDir
func NewManager(workDir string) *Manager {
	return &Manager{workDir: workDir}
}

// TransientPath returns a unique output path derived from the video title
func (m *Manager) TransientPath(title string) string {
	name := SanitizeTitle(title) + "-" + uuid.NewString() + ".mp3"
	return filepath.Join(m.workDir, name)
}

// Exists returns true if the file exists
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file
func (m *Manager) Remove(path string) error {
	return os.Remove(path)
}

// Size returns the file size in bytes, or 0 when the file is missing
func (m *Manager) Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// SanitizeTitle strips characters that are unsafe in filesystem paths and
// HTTP headers, replacing them with underscores.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '(' || r == ')':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	s := strings.TrimSpace(b.String())
	if s == "" {
		return "audio"
	}
	if runes := []rune(s); len(runes) > maxTitleLength {
		s = string(runes[:maxTitleLength])
	}
	return s
}

// Ensure Manager implements download.FileStore
var _ download.FileStore = (*Manager)(nil)
