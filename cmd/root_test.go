package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/pflag"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// execute runs the root command with the given args and captures stdout.
// Flag state is reset first; the package-level command would otherwise
// carry values and Changed bits from one run into the next.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			if err := f.Value.Set(f.DefValue); err != nil {
				t.Fatalf("failed to reset --%s: %v", f.Name, err)
			}
			f.Changed = false
		}
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// initGitRepo creates a repository with one committed file.
func initGitRepo(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := gogit.PlainInit(tmpDir, false)
	if err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test content"), 0644); err != nil {
		t.Fatal(err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Add("test.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	}); err != nil {
		t.Fatal(err)
	}
	return tmpDir
}

func TestRootOutsideRepository(t *testing.T) {
	out, err := execute(t, "-f", "%b", t.TempDir())
	if !errors.Is(err, domain.ErrNotARepository) {
		t.Fatalf("expected ErrNotARepository, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output outside a repository, got %q", out)
	}
}

func TestRootPrintsPromptLine(t *testing.T) {
	root := initGitRepo(t)

	out, err := execute(t, "-f", "%n:%b", root)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	line := strings.TrimSpace(out)
	if !strings.HasPrefix(line, "git:") || line == "git:" {
		t.Errorf("unexpected prompt line %q", line)
	}
}

func TestRootFlagsDoNotLeakBetweenRuns(t *testing.T) {
	root := initGitRepo(t)

	out, err := execute(t, "-f", "%r", root)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.HasPrefix(out, "git:") {
		t.Fatalf("-f %%r must not render the default format, got %q", out)
	}

	// Without -f the configured default format applies again.
	out, err = execute(t, root)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "git:") {
		t.Errorf("expected default format output, got %q", out)
	}
}

func TestRootStrictFormatViaEnv(t *testing.T) {
	root := initGitRepo(t)

	t.Setenv("VCSP_FORMAT_STRICT", "true")
	_, err := execute(t, "-f", "%b %x", root)
	if err == nil {
		t.Error("expected error for unknown placeholder in strict mode")
	}
}

func TestDetectCommand(t *testing.T) {
	root := initGitRepo(t)

	out, err := execute(t, "detect", root)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "git\t") {
		t.Errorf("unexpected detect output %q", out)
	}
	if !strings.Contains(out, root) {
		t.Errorf("detect output %q missing root %q", out, root)
	}
}

func TestDetectCommandOutsideRepository(t *testing.T) {
	_, err := execute(t, "detect", t.TempDir())
	if !errors.Is(err, domain.ErrNotARepository) {
		t.Fatalf("expected ErrNotARepository, got %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, key := range []string{"format.default", "dirty.mode", "detect.order"} {
		if !strings.Contains(out, key) {
			t.Errorf("config output missing %q", key)
		}
	}
}
