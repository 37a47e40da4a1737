package reader

import (
	"context"
	"time"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

type timeoutReader struct {
	inner   Reader
	timeout time.Duration
}

// WithTimeout bounds every ReadAll of r by d. A read that has not returned by
// then is abandoned and reported as an EnumerationError. The abandoned read
// keeps its goroutine until the inner reader returns.
func WithTimeout(r Reader, d time.Duration) Reader {
	return &timeoutReader{inner: r, timeout: d}
}

type readResult struct {
	records []model.ProcessRecord
	err     error
}

func (t *timeoutReader) ReadAll(ctx context.Context) ([]model.ProcessRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		records, err := t.inner.ReadAll(ctx)
		done <- readResult{records: records, err: err}
	}()

	select {
	case res := <-done:
		return res.records, res.err
	case <-ctx.Done():
		return nil, &EnumerationError{Op: "wait for process listing", Err: ctx.Err()}
	}
}
