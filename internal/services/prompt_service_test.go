package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvidx/vcsprompt/internal/config"
	"github.com/dvidx/vcsprompt/internal/domain"
	"github.com/dvidx/vcsprompt/internal/format"
)

func testService() *PromptService {
	return NewPromptService(config.DefaultConfig())
}

func mustParse(t *testing.T, s string) *format.Spec {
	t.Helper()
	spec, err := format.Parse(s, false)
	require.NoError(t, err)
	return spec
}

// initGitRepo creates a repository with one committed file.
func initGitRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := gogit.PlainInit(tmpDir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test content"), 0644))
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("test.txt")
	require.NoError(t, err)
	_, err = worktree.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return tmpDir, repo
}

func TestRunOutsideRepository(t *testing.T) {
	svc := testService()

	out, found, err := svc.Run(context.Background(), t.TempDir(), mustParse(t, "%b"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "", out)
}

func TestRunOutsideRepositoryWithFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Fallback = "-"
	svc := NewPromptService(cfg)

	out, found, err := svc.Run(context.Background(), t.TempDir(), mustParse(t, "%b"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "-", out)
}

func TestRunFreshRepositoryAllFields(t *testing.T) {
	root, _ := initGitRepo(t)
	svc := testService()

	out, found, err := svc.Run(context.Background(), root, mustParse(t, "%b %r %p %u %m"))
	require.NoError(t, err)
	require.True(t, found)

	rec, _, err := svc.Status(context.Background(), root)
	require.NoError(t, err)
	require.NotEmpty(t, rec.Branch)
	require.Len(t, rec.Revision, 7)

	// Branch, revision, display path, then empty upstream and no dirty
	// marker (their separating space survives).
	assert.Equal(t, rec.Branch+" "+rec.Revision+" .  ", out)
}

func TestRunDirtyMarkerAppearsAfterModification(t *testing.T) {
	root, _ := initGitRepo(t)
	svc := testService()
	spec := mustParse(t, "%b%m")

	before, _, err := svc.Run(context.Background(), root, spec)
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(before, "+"), "expected clean tree: %q", before)

	require.NoError(t, os.WriteFile(filepath.Join(root, "test.txt"), []byte("changed, and longer"), 0644))

	after, _, err := svc.Run(context.Background(), root, spec)
	require.NoError(t, err)
	assert.Equal(t, before+"+", after)
}

func TestRunRendersAheadCount(t *testing.T) {
	root, repo := initGitRepo(t)
	svc := testService()

	head, err := repo.Head()
	require.NoError(t, err)
	branch := head.Name().Short()
	require.NoError(t, repo.CreateBranch(&gitconfig.Branch{
		Name:   branch,
		Remote: "origin",
		Merge:  plumbing.ReferenceName("refs/heads/" + branch),
	}))
	remoteRef := plumbing.NewRemoteReferenceName("origin", branch)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(remoteRef, head.Hash())))

	// In sync: the token renders nothing.
	out, _, err := svc.Run(context.Background(), root, mustParse(t, "%b%A%B"))
	require.NoError(t, err)
	assert.Equal(t, branch, out)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "second.txt"), []byte("more"), 0644))
	_, err = worktree.Add("second.txt")
	require.NoError(t, err)
	_, err = worktree.Commit("Second commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	out, _, err = svc.Run(context.Background(), root, mustParse(t, "%b%A%B"))
	require.NoError(t, err)
	assert.Equal(t, branch+"⇡1", out)
}

func TestRunIdempotent(t *testing.T) {
	root, _ := initGitRepo(t)
	svc := testService()
	spec := mustParse(t, "%n:%b %r %p %u %m %o")

	first, _, err := svc.Run(context.Background(), root, spec)
	require.NoError(t, err)
	second, _, err := svc.Run(context.Background(), root, spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunAscentFromSubdirectory(t *testing.T) {
	root, _ := initGitRepo(t)
	subDir := filepath.Join(root, "level1", "level2")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	svc := testService()

	handle, err := svc.Locate(subDir)
	require.NoError(t, err)
	assert.Equal(t, root, handle.Root)

	out, found, err := svc.Run(context.Background(), subDir, mustParse(t, "%p"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "level1/level2", out)
}

func TestRunCorruptMetadataDegrades(t *testing.T) {
	root, _ := initGitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "index"), []byte("garbage"), 0644))
	svc := testService()

	rec, found, err := svc.Status(context.Background(), root)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.DirtyUnknown, rec.Dirty)
	assert.NotEmpty(t, rec.Branch, "branch must survive a corrupt index")
}

func TestRunDetectsHgRepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".hg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hg", "branch"), []byte("stable\n"), 0644))
	svc := testService()

	rec, found, err := svc.Status(context.Background(), root)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.KindHg, rec.Kind)
	assert.Equal(t, "stable", rec.Branch)
}

func TestRunPrecedenceIsConfigurable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".hg"), 0755))

	gitFirst := testService()
	handle, err := gitFirst.Locate(root)
	require.NoError(t, err)
	assert.Equal(t, domain.KindGit, handle.Kind)

	cfg := config.DefaultConfig()
	cfg.Detect.Order = []string{"hg", "git"}
	hgFirst := NewPromptService(cfg)
	handle, err = hgFirst.Locate(root)
	require.NoError(t, err)
	assert.Equal(t, domain.KindHg, handle.Kind)
}

func TestDisplayPath(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		start string
		want  string
	}{
		{"at root", "/repo", "/repo", "."},
		{"one level", "/repo", "/repo/sub", "sub"},
		{"nested", "/repo", "/repo/a/b", "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayPath(tt.root, tt.start))
		})
	}
}
