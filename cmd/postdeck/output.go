package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// writeOutput renders v as JSON or YAML, or calls text for the terminal
// format.
func writeOutput(w io.Writer, format string, v any, text func() string) error {
	switch format {
	case outputText, "":
		_, err := fmt.Fprint(w, text())
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid output %q: must be text, json or yaml", format)
}

func validOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML, "":
		return nil
	}
	return fmt.Errorf("invalid output %q: must be text, json or yaml", format)
}
