package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// =============================================================================
// Scene Serialization API
// =============================================================================

// Marshal encodes a scene as indented JSON.
func Marshal(s Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and checks a scene.
func Unmarshal(data []byte) (Scene, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes a scene as indented JSON to w.
func Write(s Scene, w io.Writer) error {
	if s.Version == 0 {
		s.Version = Version
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Read decodes a scene from r. The scene must carry a supported version and
// describe a consistent engine state.
func Read(r io.Reader) (Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Scene{}, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode scene")
	}
	if s.Version != Version {
		return Scene{}, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported scene version %d", s.Version)
	}
	if s.Spaces == nil {
		s.Spaces = map[int]spiral.AvailableSpace{}
	}
	if _, err := s.State(); err != nil {
		return Scene{}, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "inconsistent scene")
	}
	return s, nil
}

// ReadFile reads a scene from a JSON file.
func ReadFile(path string) (Scene, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Scene{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return Scene{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes a scene to a JSON file.
func WriteFile(s Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
