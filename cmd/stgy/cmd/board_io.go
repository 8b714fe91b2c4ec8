package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/stgyboard/pkg/stgy"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// readBoard reads a board from path, or from stdin when path is empty or "-".
// JSON is detected by extension or a leading '{'; anything else is YAML.
func readBoard(stdin io.Reader, path string) (*stgy.BoardData, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("board input is empty")
	}

	var board stgy.BoardData
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || (ext != ".yaml" && ext != ".yml" && trimmed[0] == '{') {
		if err := json.Unmarshal(trimmed, &board); err != nil {
			return nil, fmt.Errorf("failed to parse board JSON: %w", err)
		}
		return &board, nil
	}

	if err := yaml.Unmarshal(trimmed, &board); err != nil {
		return nil, fmt.Errorf("failed to parse board YAML: %w", err)
	}
	return &board, nil
}

// writeValue prints v as indented JSON or YAML.
func writeValue(w io.Writer, v interface{}, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// tokenArg accepts a token pasted with surrounding whitespace.
func tokenArg(s string) string {
	return strings.TrimSpace(s)
}
