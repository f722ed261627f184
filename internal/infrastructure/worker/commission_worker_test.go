package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

type stubProcessor struct {
	mu      sync.Mutex
	calls   []int
	cursors []domain.SaleItemCursor
	summary *usecase.BatchSummary
	// pages, when set, are returned in order instead of summary.
	pages []*usecase.BatchSummary
	err   error
}

func (s *stubProcessor) ProcessPage(_ context.Context, after domain.SaleItemCursor, limit int) (*usecase.BatchSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, limit)
	s.cursors = append(s.cursors, after)
	if len(s.pages) > 0 {
		page := s.pages[0]
		s.pages = s.pages[1:]
		return page, s.err
	}
	return s.summary, s.err
}

func (s *stubProcessor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingObserver struct {
	mu   sync.Mutex
	runs []string
}

func (o *recordingObserver) RecordBatch(processed, skipped, failed int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.runs = append(o.runs, "error")
		return
	}
	o.runs = append(o.runs, "ok")
}

func TestRunOnceReportsSummary(t *testing.T) {
	proc := &stubProcessor{summary: &usecase.BatchSummary{
		Attempted:       3,
		Processed:       2,
		Failed:          1,
		TotalCommission: decimal.NewFromInt(45000),
		Failures:        map[string]string{"sale-3": "seller inactive"},
	}}
	obs := &recordingObserver{}

	w := NewCommissionWorker(Config{Processor: proc, Observer: obs, Logger: zerolog.Nop(), BatchSize: 25})
	w.RunOnce(context.Background())

	assert.Equal(t, []int{25}, proc.calls)
	assert.Equal(t, []string{"ok"}, obs.runs)
}

func TestRunOnceReportsError(t *testing.T) {
	proc := &stubProcessor{err: errors.New("list failed")}
	obs := &recordingObserver{}

	w := NewCommissionWorker(Config{Processor: proc, Observer: obs, Logger: zerolog.Nop()})
	w.RunOnce(context.Background())

	assert.Equal(t, []int{100}, proc.calls)
	assert.Equal(t, []string{"error"}, obs.runs)
}

func TestRunOnceAdvancesCursorAndWraps(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stuck := domain.SaleItemCursor{CreatedAt: createdAt, ID: "sale-2"}

	proc := &stubProcessor{pages: []*usecase.BatchSummary{
		// A full page of items that keep failing.
		{Attempted: 2, Failed: 2, Failures: map[string]string{"sale-1": "x", "sale-2": "x"}, Next: stuck, More: true},
		// The rest of the queue.
		{Attempted: 1, Processed: 1, Next: domain.SaleItemCursor{CreatedAt: createdAt, ID: "sale-3"}},
		{},
	}}

	w := NewCommissionWorker(Config{Processor: proc, Logger: zerolog.Nop(), BatchSize: 2})
	w.RunOnce(context.Background())
	w.RunOnce(context.Background())
	w.RunOnce(context.Background())

	require.Len(t, proc.cursors, 3)
	assert.True(t, proc.cursors[0].IsZero())
	assert.Equal(t, stuck, proc.cursors[1])
	assert.True(t, proc.cursors[2].IsZero(), "expected wrap to the head after a short page")
}

func TestRunOnceKeepsCursorOnError(t *testing.T) {
	next := domain.SaleItemCursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ID: "sale-5"}
	proc := &stubProcessor{summary: &usecase.BatchSummary{Attempted: 5, Processed: 5, Next: next, More: true}}

	w := NewCommissionWorker(Config{Processor: proc, Logger: zerolog.Nop(), BatchSize: 5})
	w.RunOnce(context.Background())

	proc.err = errors.New("list failed")
	w.RunOnce(context.Background())
	w.RunOnce(context.Background())

	require.Len(t, proc.cursors, 3)
	assert.Equal(t, next, proc.cursors[1])
	assert.Equal(t, next, proc.cursors[2])
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	proc := &stubProcessor{summary: &usecase.BatchSummary{}}

	w := NewCommissionWorker(Config{Processor: proc, Logger: zerolog.Nop(), Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	require.Eventually(t, func() bool { return proc.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
