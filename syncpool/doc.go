// Package syncpool runs sync jobs on a fixed number of concurrent workers.
//
// Workers are started before any job is queued and block on the queue until
// a job is available. The producer queues every job and then closes the
// queue, which is the only signal for workers to exit once it is drained.
// Each worker keeps a private count of failed jobs, the counts are summed
// after all workers have exited.
//
// # Usages
//
//	pool, err := syncpool.New(syncpool.Config{Concurrency: 4}, executor, logger)
//	if err != nil {
//		return err
//	}
//	pool.Start(ctx)
//
//	for _, job := range jobs {
//		pool.Enqueue(job)
//	}
//	pool.Close()
//
//	res := pool.Wait()
//	os.Exit(res.ExitCode())
package syncpool
