//go:build deadlock_test

package e2e_test

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/utilitywarehouse/ghopac/syncer"
	"github.com/utilitywarehouse/ghopac/syncpool"
)

const testClones = 40

func Test_pool_detect_race_clone_and_update(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	testTmpDir := t.TempDir()
	upstream := filepath.Join(testTmpDir, "upstream")
	root := filepath.Join(testTmpDir, "root", "org")
	testName := t.Name()

	t.Log("TEST-1: init upstream")
	mustInitRepo(t, upstream)
	mustCommit(t, upstream, "file", testName+"-1")

	var jobs []syncer.Job
	for i := range testClones {
		jobs = append(jobs, syncer.Job{Path: filepath.Join(root, fmt.Sprintf("clone-%d", i)), Remote: upstream})
	}

	t.Log("TEST-2: clone all")
	if res := runPool(t, jobs, 8); res.Failed != 0 {
		t.Fatalf("unexpected failures %d", res.Failed)
	}
	for _, job := range jobs {
		assertFile(t, filepath.Join(job.Path, "file"), testName+"-1")
	}

	t.Log("TEST-3: forward upstream and update all")
	mustCommit(t, upstream, "file", testName+"-2")

	if res := runPool(t, jobs, 8); res.Failed != 0 {
		t.Fatalf("unexpected failures %d", res.Failed)
	}
	for _, job := range jobs {
		assertFile(t, filepath.Join(job.Path, "file"), testName+"-2")
	}
}

func runPool(t *testing.T, jobs []syncer.Job, concurrency int) syncpool.Result {
	t.Helper()

	executor := syncer.NewExecutor(syncer.ExecutorConfig{}, slog.Default())
	pool, err := syncpool.New(syncpool.Config{Concurrency: concurrency, QueueSize: 1}, executor, slog.Default())
	if err != nil {
		t.Fatalf("unable to create pool: %v", err)
	}

	pool.Start(t.Context())
	for _, job := range jobs {
		pool.Enqueue(job)
	}
	pool.Close()

	return pool.Wait()
}

func mustRunGit(t *testing.T, cwd string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com"}, args...)...)
	cmd.Dir = cwd
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func mustInitRepo(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	mustRunGit(t, path, "init", "-q")
	mustRunGit(t, path, "symbolic-ref", "HEAD", "refs/heads/main")
}

func mustCommit(t *testing.T, repo, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo, file), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	mustRunGit(t, repo, "add", file)
	mustRunGit(t, repo, "commit", "-q", "-m", content)
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("unable to read %s: %v", path, err)
		return
	}
	if string(got) != want {
		t.Errorf("%s content = %q, want %q", path, got, want)
	}
}
