package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/hamen/android-mcp/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat maps a --format value to a Format. An empty value picks
// JSON when stdout is piped and YAML on a terminal.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "":
		if IsOutputPiped() {
			return FormatJSON, nil
		}
		return FormatYAML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// IsOutputPiped reports whether stdout is not a terminal.
func IsOutputPiped() bool {
	fd := os.Stdout.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// DumpResult is the top-level output of the `dump` command.
type DumpResult struct {
	Serial string       `yaml:"serial"      json:"serial"`
	TS     int64        `yaml:"ts"          json:"ts"`
	Count  int          `yaml:"count"       json:"count"`
	Root   model.UiNode `yaml:"root"        json:"root"`
}

// DumpFlatResult is the top-level output when --flat is used.
type DumpFlatResult struct {
	Serial string           `yaml:"serial" json:"serial"`
	TS     int64            `yaml:"ts"     json:"ts"`
	Nodes  []model.FlatNode `yaml:"nodes"  json:"nodes"`
}

// FindResult is the output of the `find` command.
type FindResult struct {
	Serial  string        `yaml:"serial"           json:"serial"`
	Matches []model.Match `yaml:"matches"          json:"matches"`
	Tapped  *model.Point  `yaml:"tapped,omitempty" json:"tapped,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
