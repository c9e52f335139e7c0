package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sampleResult struct {
	BPM   float64  `json:"bpm" yaml:"bpm"`
	Words []string `json:"words" yaml:"words"`
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(sampleResult{BPM: 118.5, Words: []string{"one", "two"}}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}

	var got sampleResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.BPM != 118.5 || len(got.Words) != 2 {
		t.Errorf("round-trip = %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output not indented")
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	err := Output(sampleResult{BPM: 120}, OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "bpm: 120") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("raw output = %q", buf.String())
	}
}

func TestOutputUnsupportedFormat(t *testing.T) {
	if err := Output("x", OutputOptions{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("unsupported format accepted")
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := Output(sampleResult{BPM: 90}, OutputOptions{Format: FormatJSON, File: path})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "90") {
		t.Errorf("file contents = %q", data)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0.0s"},
		{1.25, "1.2s"},
		{59.96, "60.0s"},
		{61.5, "1m1.5s"},
		{3600, "60m0.0s"},
		{-1, "0.0s"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.secs); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("short"); got != "*****" {
		t.Errorf("MaskAPIKey(short) = %q", got)
	}
	got := MaskAPIKey("sk-1234567890abcdef")
	if !strings.HasPrefix(got, "sk-1") || !strings.HasSuffix(got, "cdef") || strings.Contains(got, "567") {
		t.Errorf("MaskAPIKey = %q", got)
	}
}
