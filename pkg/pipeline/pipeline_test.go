package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/scgraph/pkg/cache"
	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
)

const pairInput = `{"op":"create","addr":3,"source":1,"target":2}
{"op":"create","addr":1,"position":{"x":380,"y":300},"text":"a"}
{"op":"create","addr":2,"position":{"x":420,"y":300},"text":"b"}
`

func fileRunner(t *testing.T, dir string) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("ValidateFormats(nil) = %v", err)
	}
	if err := ValidateFormats([]string{"dot", "pdf"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateFormats() = %v, want INVALID_INPUT", err)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := Options{Config: config.Default(), Formats: []string{FormatDOT, FormatJSON}}

	first, err := fileRunner(t, dir).Execute(ctx, []byte(pairInput), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit || first.Ticks < 290 {
		t.Errorf("first run: hit=%v ticks=%d, want a computed layout", first.CacheInfo.LayoutHit, first.Ticks)
	}
	if first.Ingest.Created != 3 || first.Stats.Objects != 3 || len(first.Positions) != 2 {
		t.Errorf("first run: %+v", first.Ingest)
	}
	if !bytes.HasPrefix(first.Artifacts[FormatDOT], []byte("digraph G {")) {
		t.Errorf("dot artifact = %s", first.Artifacts[FormatDOT])
	}
	if !bytes.Contains(first.Artifacts[FormatJSON], []byte(`"connectors"`)) {
		t.Errorf("json artifact = %s", first.Artifacts[FormatJSON])
	}

	second, err := fileRunner(t, dir).Execute(ctx, []byte(pairInput), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit || second.Ticks != 0 {
		t.Errorf("second run: %+v ticks=%d, want cache hits", second.CacheInfo, second.Ticks)
	}
	for addr, p := range first.Positions {
		if second.Positions[addr] != p {
			t.Errorf("position %d = %v, want %v", addr, second.Positions[addr], p)
		}
	}
	n1, _ := second.Scene.ByAddr(1)
	if got := n1.Position(); got.X != first.Positions[1].X || got.Y != first.Positions[1].Y {
		t.Errorf("cached positions not applied to scene: %v", got)
	}
	if !bytes.Equal(first.Artifacts[FormatDOT], second.Artifacts[FormatDOT]) {
		t.Error("cached dot artifact differs")
	}
}

func TestExecuteCacheKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := Options{Config: config.Default()}
	if _, err := fileRunner(t, dir).Execute(ctx, []byte(pairInput), base); err != nil {
		t.Fatal(err)
	}

	refresh := base
	refresh.Refresh = true
	charged := base
	charged.Config.Layout.NodeCharge = -100
	limited := base
	limited.Config.Layout.MaxTicks = 10

	tests := []struct {
		name    string
		input   string
		opts    Options
		wantHit bool
	}{
		{"same", pairInput, base, true},
		{"refresh", pairInput, refresh, false},
		{"params", pairInput, charged, false},
		{"max ticks", pairInput, limited, false},
		{"input", pairInput + "\n", base, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := fileRunner(t, dir).Execute(ctx, []byte(tt.input), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if res.CacheInfo.LayoutHit != tt.wantHit {
				t.Errorf("LayoutHit = %v, want %v", res.CacheInfo.LayoutHit, tt.wantHit)
			}
		})
	}
}

func TestExecuteMaxTicks(t *testing.T) {
	opts := Options{Config: config.Default()}
	opts.Config.Layout.MaxTicks = 10
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(pairInput), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ticks != 10 {
		t.Errorf("Ticks = %d, want 10", res.Ticks)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		code  errors.Code
	}{
		{"format", pairInput, Options{Config: config.Default(), Formats: []string{"png"}}, errors.ErrCodeInvalidInput},
		{"bad json", "{nope\n", Options{Config: config.Default()}, errors.ErrCodeInvalidInput},
		{"unresolved", `{"op":"create","addr":3,"source":1,"target":2}`, Options{Config: config.Default()}, errors.ErrCodeTopology},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(tt.input), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	opts := Options{Config: config.Default(), Formats: []string{FormatSVG}}
	opts.Config.Layout.MaxTicks = 5
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(pairInput), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.100s", res.Artifacts[FormatSVG])
	}
	if res.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}
