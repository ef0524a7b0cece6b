package publish

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"artistdb/internal/codec"
	"artistdb/internal/textutil"
)

// ErrNotFound is returned by Read when no artifact exists under the name.
var ErrNotFound = errors.New("artifact not found")

// Read loads the artifact published under name, following one alias pointer.
// It returns the owning username alongside the decoded artifact.
func Read(dir, name string, c codec.Codec) (string, codec.Artifact, error) {
	data, err := readNamed(dir, name)
	if err != nil {
		return "", codec.Artifact{}, err
	}
	username := name
	if target, ok := bytes.CutPrefix(data, []byte(AliasPrefix)); ok {
		username = string(target)
		if data, err = readNamed(dir, username); err != nil {
			return "", codec.Artifact{}, fmt.Errorf("alias %s points to %s: %w", name, username, err)
		}
	}
	art, err := c.Decode(data)
	if err != nil {
		return "", codec.Artifact{}, fmt.Errorf("decode %s: %w", username, err)
	}
	return username, art, nil
}

func readNamed(dir, name string) ([]byte, error) {
	if !textutil.IsSafeFileName(name) {
		return nil, fmt.Errorf("%w: %q is not a valid name", ErrNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
