package notify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrPermissionDenied is returned when a reminder is armed without the
// notification permission.
var ErrPermissionDenied = errors.New("notification permission not granted")

// Permission is the one notification capability the app needs.
type Permission interface {
	Granted() bool
	Grant() error
	Revoke() error
}

// FilePermission stores the grant as a marker file.
type FilePermission struct {
	path string
}

// NewFilePermission keeps its marker at path.
func NewFilePermission(path string) *FilePermission {
	return &FilePermission{path: path}
}

func (p *FilePermission) Granted() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *FilePermission) Grant() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(p.path, []byte(stamp), 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (p *FilePermission) Revoke() error {
	if err := os.Remove(p.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Always is granted and cannot be revoked.
type Always struct{}

func (Always) Granted() bool { return true }
func (Always) Grant() error  { return nil }
func (Always) Revoke() error { return nil }
