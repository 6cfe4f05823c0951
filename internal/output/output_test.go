package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hamen/android-mcp/internal/model"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	ferr := fn()
	w.Close()
	os.Stdout = old

	if ferr != nil {
		t.Fatal(ferr)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func sampleDump() DumpResult {
	root := model.Normalize(map[string]any{
		"node": map[string]any{"text": "Login", "class": "android.widget.Button", "bounds": "[10,20][110,60]"},
	})
	return DumpResult{Serial: "emulator-5554", TS: 1707500000, Count: root.Count(), Root: root}
}

func TestPrintYAML(t *testing.T) {
	out := captureStdout(t, func() error { return PrintYAML(sampleDump()) })

	// YAML output should be multi-line
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded DumpResult
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Serial != "emulator-5554" {
		t.Errorf("serial: got %q", decoded.Serial)
	}
	if len(decoded.Root.Children) != 1 || *decoded.Root.Children[0].Text != "Login" {
		t.Errorf("unexpected root %+v", decoded.Root)
	}
	if !strings.Contains(out, "children: []") {
		t.Errorf("leaf children should print as an empty list:\n%s", out)
	}
}

func TestPrintJSON_SingleLine(t *testing.T) {
	out := captureStdout(t, func() error { return PrintJSON(sampleDump()) })
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact JSON should be one line, got:\n%s", out)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	if m["count"] != float64(2) {
		t.Errorf("count = %v", m["count"])
	}
}

func TestPrint_PrettyJSON(t *testing.T) {
	OutputFormat, PrettyOutput = FormatJSON, true
	t.Cleanup(func() { OutputFormat, PrettyOutput = FormatYAML, false })

	out := captureStdout(t, func() error { return Print(map[string]int{"a": 1}) })
	if out != "{\n  \"a\": 1\n}\n" {
		t.Errorf("got %q", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
