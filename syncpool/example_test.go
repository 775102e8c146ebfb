package syncpool_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/utilitywarehouse/ghopac/syncer"
	"github.com/utilitywarehouse/ghopac/syncpool"
)

func Example() {
	tmpRoot, err := os.MkdirTemp("", "ghopac-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpRoot)

	// a file where a repository is expected
	if err := os.WriteFile(filepath.Join(tmpRoot, "notes"), nil, 0644); err != nil {
		panic(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := syncer.NewExecutor(syncer.ExecutorConfig{}, log)

	pool, err := syncpool.New(syncpool.Config{Concurrency: 2}, exec, log)
	if err != nil {
		panic(err)
	}
	pool.Start(context.Background())

	// none of these jobs can be synced so git is never invoked
	pool.Enqueue(syncer.Job{Path: filepath.Join(tmpRoot, "notes")})
	pool.Enqueue(syncer.Job{Path: filepath.Join(tmpRoot, "missing")})
	pool.Enqueue(syncer.Job{Path: filepath.Join(tmpRoot, "also-missing")})
	pool.Close()

	res := pool.Wait()
	fmt.Println("processed:", res.Processed, "failed:", res.Failed, "exit code:", res.ExitCode())
	// Output: processed: 3 failed: 3 exit code: 3
}
