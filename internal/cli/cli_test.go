package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/respimg/pkg/errors"
)

const testSections = `
[[sections]]
id = "hero"

  [[sections.sizes]]
  screen_min_width = "1200px"
  container_max_width = "800px"

  [[sections.sizes]]
  screen_max_width = "600px"
  container_max_width = "100vw"

[[sections]]
id = "sidebar"

  [[sections.sizes]]
  screen_min_width = "0px"
  container_max_width = "300px"
`

const brokenSections = `{
  "sections": [
    {"id": "hero", "sizes": [{"screen_min_width": "0px", "container_max_width": "50vw"}]},
    {"id": "", "sizes": [{"screen_min_width": "0px", "container_max_width": "50vw"}]}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSizesCommand(t *testing.T) {
	path := writeFile(t, "sections.toml", testSections)

	tests := []struct {
		name     string
		args     []string
		want     string
		wantCode errors.Code
	}{
		{
			name: "hero",
			args: []string{"sizes", "-s", path, "--section", "hero", "--default", "(max-width: 1024px) 100vw, 1024px"},
			want: "(max-width: 600px) 100vw, (min-width: 1200px) 800px, 1024px",
		},
		{
			name: "default host sizes",
			args: []string{"sizes", "-s", path, "--section", "sidebar", "--no-cache"},
			want: "(min-width: 0px) 300px, 1024px",
		},
		{
			name:     "unknown section",
			args:     []string{"sizes", "-s", path, "--section", "footer"},
			wantCode: errors.ErrCodeUnknownSection,
		},
		{
			name:     "unparseable default",
			args:     []string{"sizes", "-s", path, "--section", "hero", "--default", "100vw"},
			wantCode: errors.ErrCodeInvalidSizes,
		},
		{
			name:     "no section chosen",
			args:     []string{"sizes", "-s", path},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSizesCommandCachesExpressions(t *testing.T) {
	path := writeFile(t, "sections.toml", testSections)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	var out bytes.Buffer
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs([]string{"sizes", "-s", path, "--section", "hero"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("sizes error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(cacheHome, appName))
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("sizes should have written a cache entry")
	}

	out.Reset()
	root = c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if !strings.Contains(out.String(), "Cleared") {
		t.Errorf("cache clear output = %q", out.String())
	}
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.toml", testSections)
	broken := writeFile(t, "broken.json", brokenSections)

	t.Run("valid", func(t *testing.T) {
		out, err := run(t, "validate", good)
		if err != nil {
			t.Fatalf("validate error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "2 sections") {
			t.Errorf("output missing section count:\n%s", out)
		}
	})

	t.Run("rejected and duplicate", func(t *testing.T) {
		out, err := run(t, "validate", good, broken)
		if err == nil {
			t.Fatal("validate should fail when a definition is rejected")
		}
		for _, want := range []string{
			"Section 'hero' was registered more than once.",
			"Section definition must have an id.",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		for _, re := range []string{`Rejected\s+1\b`, `Duplicates\s+1\b`} {
			if !regexp.MustCompile(re).MatchString(out) {
				t.Errorf("summary does not match %s:\n%s", re, out)
			}
		}
	})

	t.Run("verbose logs diagnostics", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
		var out, logs bytes.Buffer
		c := New(&logs, log.DebugLevel)
		c.Out = &out
		root := c.RootCommand()
		root.SetArgs([]string{"validate", good, broken})
		if err := root.ExecuteContext(context.Background()); err == nil {
			t.Fatal("validate should fail when a definition is rejected")
		}
		if !strings.Contains(logs.String(), "event=duplicate_section") {
			t.Errorf("debug log missing duplicate diagnostic:\n%s", logs.String())
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		_, err := run(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Fatal("validate should fail for a missing file")
		}
	})
}

func TestSectionsCommand(t *testing.T) {
	path := writeFile(t, "sections.toml", testSections)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "sections", path)
		if err != nil {
			t.Fatalf("sections error = %v", err)
		}
		for _, want := range []string{"hero", "sidebar", "1200px", "100vw", "2 sections"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, "sections", path, "--output", "yaml")
		if err != nil {
			t.Fatalf("sections error = %v", err)
		}
		if !strings.Contains(out, "screen_min_width: 1200px") {
			t.Errorf("yaml output:\n%s", out)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "sections", path, "--output", "xml")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestCachePathCommand(t *testing.T) {
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q, want suffix %q", out, appName)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}
