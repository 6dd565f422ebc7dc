package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			"prosemirror",
			"notes.json",
			`{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Agenda"}]}]}`,
			"## Agenda\n",
		},
		{"html", "panel.html", "<ul><li>Ship <b>v2</b></li></ul>", "- Ship **v2**\n"},
		{"markdown", "notes.md", "1. one\n2. two", "1. one\n2. two\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, "render", writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("render: %v\n%s", err, out)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	if _, err := runCmd(t, "render", writeFile(t, "notes.pdf", "x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	out, err := runCmd(t, "render", writeFile(t, "bad.json", `{"type":"doc","content":[{"type":"table"}]}`))
	if err == nil || !strings.Contains(out, "table") {
		t.Errorf("expected structural error mentioning the node kind, got %v: %s", err, out)
	}
}

func TestRenderCommand_Metrics(t *testing.T) {
	out, err := runCmd(t, "render", "--metrics", writeFile(t, "n.md", "### A\n\n- x\n- y"))
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Markdown string `json:"markdown"`
		Metrics  struct {
			SectionCount int `json:"section_count"`
			BulletCount  int `json:"bullet_count"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Metrics.SectionCount != 1 || res.Metrics.BulletCount != 2 {
		t.Errorf("unexpected metrics %+v", res.Metrics)
	}
}

func TestTranscriptCommand(t *testing.T) {
	path := writeFile(t, "segments.json", `[
		{"start_timestamp":"2025-03-04T15:00:00Z","end_timestamp":"2025-03-04T15:00:04Z","text":"Hi","source":"microphone","is_final":true},
		{"start_timestamp":"2025-03-04T15:00:04Z","end_timestamp":"2025-03-04T15:00:05Z","text":"draft","source":"system","is_final":false},
		{"start_timestamp":"2025-03-04T15:00:05Z","end_timestamp":"2025-03-04T15:00:09Z","text":"Hello","source":"system","is_final":true}
	]`)
	out, err := runCmd(t, "transcript", path)
	if err != nil {
		t.Fatal(err)
	}
	want := "**Me** [00:00:00 - 00:00:04]\nHi\n\n**Them** [00:00:05 - 00:00:09]\nHello\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRunExitCodes(t *testing.T) {
	if code := run([]string{"render"}); code != 1 {
		t.Errorf("expected exit code 1 for missing file argument, got %d", code)
	}
	if code := run([]string{"render", writeFile(t, "ok.md", "# ok")}); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}
