package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

func TestParseMargin(t *testing.T) {
	tests := []struct {
		in      []float64
		want    layout.Margin
		wantErr bool
	}{
		{[]float64{10}, layout.Margin{Left: 10, Right: 10, Top: 10, Bottom: 10}, false},
		{[]float64{1, 2, 3, 4}, layout.Margin{Left: 1, Right: 2, Top: 3, Bottom: 4}, false},
		{[]float64{1, 2}, layout.Margin{}, true},
		{nil, layout.Margin{}, true},
	}
	for _, tt := range tests {
		got, err := parseMargin(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMargin(%v) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMargin(%v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := map[string][]string{
		"":              {"svg"},
		"svg":           {"svg"},
		"SVG, png,,dot": {"svg", "png", "dot"},
	}
	for in, want := range tests {
		got := parseFormats(in)
		if len(got) != len(want) {
			t.Errorf("parseFormats(%q) = %v, want %v", in, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("parseFormats(%q) = %v, want %v", in, got, want)
				break
			}
		}
	}
}

func TestLayoutFlagsOverrideOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var f layoutFlags
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--node-spacing", "12", "--margin", "0", "-t"}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Mode: "single", NodeSpacing: 99, LinkStrategy: "straight"}
	if err := f.apply(cmd, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.NodeSpacing != 12 || !opts.Transverse || !opts.NoMargin {
		t.Errorf("changed flags not applied: %+v", opts)
	}
	if opts.Mode != "single" || opts.LinkStrategy != "straight" {
		t.Errorf("unchanged flags overrode config: %+v", opts)
	}
}

func TestRenderFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var f renderFlags
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--theme", "mono", "--no-labels"}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Formats: []string{"png"}, Scale: 3}
	f.apply(cmd, &opts)
	if len(opts.Formats) != 1 || opts.Formats[0] != "png" || opts.Scale != 3 {
		t.Errorf("config values lost: %+v", opts)
	}
	if opts.Theme != "mono" || !opts.NoLabels {
		t.Errorf("flags not applied: %+v", opts)
	}

	empty := pipeline.Options{}
	f.apply(cmd, &empty)
	if len(empty.Formats) != 1 || empty.Formats[0] != "svg" {
		t.Errorf("default format = %v", empty.Formats)
	}
}

func TestLayoutOutput(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"deps.json", "", "deps.layout.json"},
		{"dir/deps.json", "", "dir/deps.layout.json"},
		{"deps.layout.json", "", "deps.layout.json"},
		{"-", "", "-"},
		{"deps.json", "x.json", "x.json"},
	}
	for _, tt := range tests {
		if got := layoutOutput(tt.input, tt.output); got != tt.want {
			t.Errorf("layoutOutput(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}
