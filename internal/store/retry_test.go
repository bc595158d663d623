package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
)

var fastRetry = retryConfig{maxRetries: 3, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond}

func TestIsTransientSQLiteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"non-transient", errors.New("syntax error"), false},
		{"busy code", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"locked code", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"short read", sqlite3.Error{Code: sqlite3.ErrIoErr, ExtendedCode: sqlite3.ErrIoErrShortRead}, true},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"database is locked text", errors.New("database is locked"), true},
		{"wrapped busy text", errors.New("exec: SQLITE_BUSY: db locked"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientSQLiteErr(tt.err); got != tt.want {
				t.Errorf("isTransientSQLiteErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryOp_SucceedsImmediately(t *testing.T) {
	calls := 0
	err := retryOp(context.Background(), fastRetry, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err=%v calls=%d, want nil and 1", err, calls)
	}
}

func TestRetryOp_NonTransientErrorNoRetry(t *testing.T) {
	calls := 0
	permanent := errors.New("syntax error near SELECT")
	err := retryOp(context.Background(), fastRetry, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("err=%v calls=%d, want permanent and 1", err, calls)
	}
}

func TestRetryOp_RecoversFromTransient(t *testing.T) {
	calls := 0
	err := retryOp(context.Background(), fastRetry, func() error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d, want nil and 3", err, calls)
	}
}

func TestRetryOp_GivesUp(t *testing.T) {
	calls := 0
	err := retryOp(context.Background(), fastRetry, func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != fastRetry.maxRetries+1 {
		t.Errorf("err=%v calls=%d, want error and %d", err, calls, fastRetry.maxRetries+1)
	}
}

func TestRetryOp_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryOp(ctx, retryConfig{maxRetries: 5, baseDelay: time.Second, maxDelay: time.Second}, func() error {
		calls++
		return errors.New("database is locked")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err=%v calls=%d, want context.Canceled and 1", err, calls)
	}
}

func TestBackoffDelay_Capped(t *testing.T) {
	cfg := retryConfig{maxRetries: 10, baseDelay: 10 * time.Millisecond, maxDelay: 40 * time.Millisecond}
	for attempt := 0; attempt < 10; attempt++ {
		d := backoffDelay(cfg, attempt)
		if d > cfg.maxDelay+cfg.baseDelay {
			t.Errorf("attempt %d: delay %v exceeds cap", attempt, d)
		}
	}
}
