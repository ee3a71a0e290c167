package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// WriteFile stores the report at filename. The extension picks the
// encoding: .yaml/.yml for YAML, anything else for indented JSON.
func WriteFile(filename string, r *Report) error {
	var data []byte
	var err error

	switch path.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadFile loads a report previously stored with WriteFile, choosing the
// decoder by file extension the same way.
func ReadFile(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	r := &Report{}
	switch path.Ext(filename) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, r)
	default:
		err = json.Unmarshal(data, r)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", filename, err)
	}
	return r, nil
}
