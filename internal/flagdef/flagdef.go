// Package flagdef loads flag definitions from a YAML file and keeps the
// store in sync with it while the file changes.
package flagdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/listenupapp/listenup-flags/internal/service"
	"github.com/listenupapp/listenup-flags/internal/validation"
)

// File is the on-disk layout of a definitions file:
//
//	flags:
//	  - id: bookmark
//	    entity_type: node
//	    label: Bookmark
//	    flag_short_text: Bookmark this
//	    unflag_short_text: Remove bookmark
//	    weight: 0
//	    global: false
type File struct {
	Flags []service.CreateFlagRequest `yaml:"flags"`
}

// Load reads the definitions in path.
func Load(path string) ([]service.CreateFlagRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	defs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes definitions from r. Unknown keys are rejected so typos do
// not silently drop settings. An empty document yields no definitions.
// A definition without an id gets one derived from its label.
func Parse(r io.Reader) ([]service.CreateFlagRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []service.CreateFlagRequest{}, nil
		}
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	if f.Flags == nil {
		f.Flags = []service.CreateFlagRequest{}
	}
	for i := range f.Flags {
		if f.Flags[i].ID == "" {
			f.Flags[i].ID = validation.MachineName(f.Flags[i].Label)
		}
	}
	return f.Flags, nil
}
