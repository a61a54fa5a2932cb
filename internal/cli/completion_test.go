package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// complete runs cobra's hidden completion command and returns the candidates.
func complete(t *testing.T, args ...string) []string {
	t.Helper()
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"__complete"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("__complete %v: %v", args, err)
	}
	var got []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		got = append(got, strings.SplitN(line, "\t", 2)[0])
	}
	return got
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		exclude []string
	}{
		{"render scope", []string{"render", "cfg.toml", "--scope", "us"}, []string{"usa"}, []string{"world"}},
		{"scopes arg", []string{"scopes", ""}, []string{"usa", "world"}, nil},
		{"scopes second arg", []string{"scopes", "usa", ""}, nil, []string{"usa", "world"}},
		{"format", []string{"render", "cfg.toml", "--format", "p"}, []string{"png", "pdf"}, []string{"svg", "jpeg"}},
		{"format list", []string{"render", "cfg.toml", "--format", "svg,"}, []string{"svg,png", "svg,jpeg", "svg,pdf"}, []string{"svg,svg"}},
		{"exporter", []string{"render", "cfg.toml", "--exporter", ""}, []string{"chrome", "rsvg"}, nil},
		{"projection", []string{"render", "cfg.toml", "--projection", "m"}, []string{"mercator"}, []string{"orthographic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := complete(t, tt.args...)
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("completions %v missing %q", got, w)
				}
			}
			for _, x := range tt.exclude {
				if slices.Contains(got, x) {
					t.Errorf("completions %v contain %q", got, x)
				}
			}
		})
	}
}
