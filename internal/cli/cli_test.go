package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/graph"
)

const sampleEvents = `{"op":"create","addr":1,"position":{"x":380,"y":300},"text":"a"}
{"op":"create","addr":2,"position":{"x":420,"y":300},"text":"b"}
{"op":"create","addr":3,"source":1,"target":2}
`

// captureStdout redirects user-facing output to a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// execute runs the root command with args against a fresh CLI.
func execute(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return c, root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"layout", "render", "watch", "serve", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing --config")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		def   string
		want  []string
	}{
		{"", "svg", []string{"svg"}},
		{"  ", "dot", []string{"dot"}},
		{"json", "svg", []string{"json"}},
		{"svg,dot", "svg", []string{"svg", "dot"}},
		{"svg, json,", "svg", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input, tt.def)
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q, %q) = %v, want %v", tt.input, tt.def, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		input    string
		format   string
		multiple bool
		want     string
	}{
		{"derived", "", "scenes/a.jsonl", "svg", false, "scenes/a.svg"},
		{"explicit single", "out.txt", "a.jsonl", "dot", false, "out.txt"},
		{"base strips format ext", "out.svg", "a.jsonl", "json", true, "out.json"},
		{"base keeps other ext", "out.v1", "a.jsonl", "dot", true, "out.v1.dot"},
		{"stdin input", "", "-", "svg", false, "scene.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderOutputPath(tt.output, tt.input, tt.format, tt.multiple); got != tt.want {
				t.Errorf("renderOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := layoutOutputPath("", "dir/a.jsonl"); got != "dir/a.positions.json" {
		t.Errorf("layoutOutputPath() = %q", got)
	}
	if got := layoutOutputPath("p.json", "a.jsonl"); got != "p.json" {
		t.Errorf("layoutOutputPath() = %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeFile(t, dir, "scgraph.toml", "[layout]\nmax_ticks = 25\n\n[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")

	out := captureStdout(t)
	c, err := execute(t, "--config", path, "cache", "path")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if c.Config.Layout.MaxTicks != 25 {
		t.Errorf("MaxTicks = %d, want 25", c.Config.Layout.MaxTicks)
	}
	if got := strings.TrimSpace(out.String()); got != cacheDir {
		t.Errorf("cache path = %q, want %q", got, cacheDir)
	}

	bad := writeFile(t, dir, "bad.toml", "[cache]\nbackend = \"s3\"\n")
	if _, err := execute(t, "--config", bad, "cache", "path"); err == nil {
		t.Error("execute() with invalid config succeeded")
	}
}

func TestCLIDefaults(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if c.Config.Cache.Backend != config.CacheFile {
		t.Errorf("default backend = %q, want file", c.Config.Cache.Backend)
	}
	if err := c.Config.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "scene.jsonl", sampleEvents)
	cfg := writeFile(t, dir, "scgraph.yaml", "cache:\n  dir: "+filepath.ToSlash(filepath.Join(dir, "cache"))+"\n")
	out := captureStdout(t)

	for i := range 2 {
		if _, err := execute(t, "-c", cfg, "layout", input, "--max-ticks", "20"); err != nil {
			t.Fatalf("run %d: execute() error = %v", i, err)
		}
	}

	pos, err := graph.ReadPositionsFile(filepath.Join(dir, "scene.positions.json"))
	if err != nil {
		t.Fatalf("ReadPositionsFile() error = %v", err)
	}
	if len(pos) != 2 {
		t.Errorf("positions = %v, want 2 entries", pos)
	}
	if got := out.String(); !strings.Contains(got, iconFresh) || !strings.Contains(got, iconCached) {
		t.Errorf("output = %q, want a fresh run then a cached run", got)
	}

	out.Reset()
	if _, err := execute(t, "-c", cfg, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cleared 1 cached entries") {
		t.Errorf("cache clear output = %q", out.String())
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "scene.jsonl", sampleEvents)
	captureStdout(t)

	_, err := execute(t, "render", input, "--no-cache", "--max-ticks", "5", "-f", "dot,json", "-o", filepath.Join(dir, "out.svg"))
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "out.dot"))
	if err != nil || !bytes.HasPrefix(dot, []byte("digraph G {")) {
		t.Errorf("out.dot = %q, %v", dot, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := graph.ReadScene(bytes.NewReader(data)); err != nil {
		t.Errorf("out.json is not a scene: %v", err)
	}
}

func TestRenderCommandStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "scene.jsonl", sampleEvents)
	out := captureStdout(t)

	if _, err := execute(t, "render", input, "--no-cache", "--max-ticks", "5", "-f", "dot", "--no-labels", "-o", "-"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.HasPrefix(got, "digraph G {") || strings.Contains(got, "xlabel") {
		t.Errorf("stdout = %q", got)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "scene.jsonl", sampleEvents)
	captureStdout(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", input, "-f", "png"}},
		{"bad crossing", []string{"render", input, "--crossing", "sideways"}},
		{"missing input", []string{"render", filepath.Join(dir, "nope.jsonl")}},
		{"unresolved", []string{"layout", writeFile(t, dir, "dangling.jsonl", `{"op":"create","addr":3,"source":1,"target":2}`), "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("execute(%v) succeeded, want error", tt.args)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	out := captureStdout(t)

	if _, err := execute(t, "config", "show"); err != nil {
		t.Fatal(err)
	}
	shown := writeFile(t, dir, "shown.toml", out.String())
	cfg, err := config.Load(shown)
	if err != nil {
		t.Fatalf("config show output does not load: %v\n%s", err, out.String())
	}
	if cfg.Cache.Backend != config.CacheFile {
		t.Errorf("round-tripped backend = %q", cfg.Cache.Backend)
	}

	out.Reset()
	if _, err := execute(t, "config", "show", "-f", "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "layout:") {
		t.Errorf("yaml output = %q", out.String())
	}

	out.Reset()
	if _, err := execute(t, "config", "validate", shown); err != nil {
		t.Errorf("config validate error = %v", err)
	}
	if _, err := execute(t, "config", "validate", writeFile(t, dir, "bad.yaml", "server:\n  max_events: -1\n")); err == nil {
		t.Error("config validate accepted max_events = -1")
	}
}

func TestCompletionCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "scgraph") {
		t.Error("bash completion does not mention scgraph")
	}
}
