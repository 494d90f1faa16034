package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type taskTable []struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

func (t taskTable) Headers() []string { return []string{"NAME", "SCHEDULE"} }

func (t taskTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Name, r.Schedule})
	}
	return rows
}

func sampleTable() taskTable {
	return taskTable{
		{Name: "clear-recycle-bin", Schedule: "0 3 * * *"},
		{Name: "trim", Schedule: "@daily"},
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[0], "SCHEDULE") {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	// Columns are aligned
	if strings.Index(lines[1], "0 3") != strings.Index(lines[2], "@daily") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTextFormatter_Plain(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "Removed 1 objects and 2 pages"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "Removed 1 objects and 2 pages\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&JSONFormatter{Indent: true}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["schedule"] != "@daily" {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	expected := "NAME,SCHEDULE\nclear-recycle-bin,0 3 * * *\ntrim,@daily\n"
	if buf.String() != expected {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), expected)
	}

	if err := (&CSVFormatter{}).FormatTo(buf, "not a table"); err == nil {
		t.Error("expected error for non-table data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  OutputFormat
		want    string
		wantErr bool
	}{
		{FormatText, "*cli.TextFormatter", false},
		{"", "*cli.TextFormatter", false},
		{FormatJSON, "*cli.JSONFormatter", false},
		{FormatCSV, "*cli.CSVFormatter", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := typeName(f); got != tt.want {
				t.Errorf("NewFormatter() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	}
	return ""
}
