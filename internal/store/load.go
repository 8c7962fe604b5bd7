package store

import (
	"context"
	"sync"
	"time"

	"github.com/sdboyer/constext"

	"github.com/solvectl/solvectl/internal/pool"
)

// Source names one repo directory to load and its priority, as the CLI's
// `solve` subcommand assembles from its flags.
type Source struct {
	Name     string
	Priority int
	Dir      string
}

// LoadAll loads every Source into its own repo concurrently, merging the
// caller's cancellation context with a fixed per-repo timeout via
// constext.Cons — a caller cancel or a single slow repo's timeout both
// stop every in-flight load without one starving the other.
func LoadAll(ctx context.Context, p *pool.IdSpace, srcs []Source, perRepoTimeout time.Duration) error {
	var wg sync.WaitGroup
	var mu sync.Mutex // serializes pool mutation; IdSpace is not safe for concurrent writers
	errs := make([]error, len(srcs))

	for i, src := range srcs {
		repo := p.AddRepo(src.Name, src.Priority)

		timeoutCtx, cancel := context.WithTimeout(context.Background(), perRepoTimeout)
		loadCtx, cancelCons := constext.Cons(ctx, timeoutCtx)

		wg.Add(1)
		go func(i int, dir string, repo pool.RepoId, loadCtx context.Context, cancel, cancelCons context.CancelFunc) {
			defer wg.Done()
			defer cancel()
			defer cancelCons()

			done := make(chan error, 1)
			go func() {
				mu.Lock()
				defer mu.Unlock()
				done <- Load(p, repo, dir)
			}()

			select {
			case err := <-done:
				errs[i] = err
			case <-loadCtx.Done():
				errs[i] = loadCtx.Err()
			}
		}(i, src.Dir, repo, loadCtx, cancel, cancelCons)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
