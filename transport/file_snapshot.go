package transport

import (
	"errors"
	"os"
)

// FileSnapshot persists a Simulated device image to a regular file between
// runs of the demo, so the "survives power loss" story can be shown
// without real hardware. It is adapted from the teacher's FileReader,
// trimmed to the two operations a device snapshot needs.
type FileSnapshot struct {
	path string
}

func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

func (s *FileSnapshot) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *FileSnapshot) Load() ([]byte, error) {
	return os.ReadFile(s.path)
}

func (s *FileSnapshot) Save(data []byte) error {
	if data == nil {
		return errors.New("transport: nil snapshot buffer")
	}
	return os.WriteFile(s.path, data, 0o644)
}
