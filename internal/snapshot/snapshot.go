// Package snapshot reads and writes the engine's persisted JSON documents.
// Each document is read once at run start and written once at run end;
// writes go through a temp file and rename so a crashed run never leaves a
// half-written snapshot behind.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Load decodes the document at path into v. A missing file is reported via
// os.IsNotExist on the returned error; callers treat that as "no prior
// snapshot" and degrade accordingly.
func Load(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return nil
}

// Save atomically writes v as indented JSON to path.
func Save(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
