package source

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initDeckRepo creates a local git repository holding a single input
// deck, so the git backend can be exercised without the network.
func initDeckRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	r, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tddft.in"), []byte(testDeck), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := r.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Add("tddft.in"); err != nil {
		t.Fatal(err)
	}
	_, err = w.Commit("add deck", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestGitRepository(t *testing.T) {
	dir := initDeckRepo(t)

	parsed, err := url.Parse(dir)
	if err != nil {
		t.Fatal(err)
	}
	repo := &GitRepository{Name: "tddft", URL: parsed, Path: "tddft.in"}
	if err := repo.Refresh(); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if nr, ok := repo.GetData("nr"); !ok || nr != int64(256) {
		t.Errorf("Expected nr=256, got %v (%t)", nr, ok)
	}
	if string(repo.GetRawData()) != testDeck {
		t.Error("Raw data does not match the committed deck")
	}

	// Second refresh pulls; the local repository is already up to date.
	if err := repo.Refresh(); err != nil {
		t.Fatalf("Refresh (pull) error: %v", err)
	}
}

func TestGitRepositoryMissingDeck(t *testing.T) {
	dir := initDeckRepo(t)

	parsed, err := url.Parse(dir)
	if err != nil {
		t.Fatal(err)
	}
	repo := &GitRepository{Name: "tddft", URL: parsed, Path: "no-such-file.in"}
	if err := repo.Refresh(); err == nil {
		t.Fatal("Expected error for missing deck file, got nil")
	}
}

func TestGitRepositoryBadURL(t *testing.T) {
	parsed, err := url.Parse("/tmp/definitely-not-a-repo")
	if err != nil {
		t.Fatal(err)
	}
	repo := &GitRepository{Name: "tddft", URL: parsed, Path: "tddft.in"}
	if err := repo.Refresh(); err == nil {
		t.Fatal("Expected clone error, got nil")
	}
}
