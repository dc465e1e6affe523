package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r, err := NewRetry(RetryConfig[int]{})
	if err != nil {
		t.Fatalf("NewRetry() error = %v", err)
	}
	if r.config.ShouldHandle == nil {
		t.Error("ShouldHandle not defaulted")
	}
	if r.config.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", r.config.MaxRetries)
	}
}

func TestNewRetry_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config RetryConfig[int]
	}{
		{"negative retries", RetryConfig[int]{MaxRetries: -2}},
		{"negative base delay", RetryConfig[int]{Delay: DelayPolicy{BaseDelay: -time.Second}}},
		{"negative max delay", RetryConfig[int]{Delay: DelayPolicy{MaxDelay: -time.Second}}},
		{"unknown backoff kind", RetryConfig[int]{Delay: DelayPolicy{Kind: BackoffKind(42)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRetry(tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewRetry() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	r, _ := NewRetry(RetryConfig[string]{MaxRetries: 3})

	attempts := 0
	v, err := r.Execute(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if v != "ok" {
		t.Errorf("Execute() = %q, want ok", v)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries: 5,
		Delay:      DelayPolicy{Kind: BackoffConstant, BaseDelay: time.Millisecond},
	})

	attempts := 0
	testErr := errors.New("transient")

	v, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, testErr
		}
		return attempts, nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if v != 3 {
		t.Errorf("Execute() = %d, want 3", v)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ExhaustionCounts(t *testing.T) {
	// An always-failing operation with a budget of N retries executes
	// exactly N+1 attempts and fires OnRetry exactly N times.
	const maxRetries = 4

	retries := 0
	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries: maxRetries,
		OnRetry: func(attempt int, delay time.Duration, outcome Outcome[int]) {
			retries++
			if attempt != retries {
				t.Errorf("OnRetry attempt = %d, want %d", attempt, retries)
			}
			if outcome.Succeeded() {
				t.Error("OnRetry fired for a successful outcome")
			}
		},
	})

	attempts := 0
	testErr := errors.New("always fails")

	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != maxRetries+1 {
		t.Errorf("attempts = %d, want %d", attempts, maxRetries+1)
	}
	if retries != maxRetries {
		t.Errorf("OnRetry fired %d times, want %d", retries, maxRetries)
	}
}

func TestRetry_SuccessRetryCountConsistency(t *testing.T) {
	// When the sequence ends in success, retries made equals attempts
	// executed minus one.
	retries := 0
	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries: 10,
		OnRetry: func(attempt int, delay time.Duration, outcome Outcome[int]) {
			retries++
		},
	})

	attempts := 0
	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 4 {
			return 0, errors.New("transient")
		}
		return attempts, nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if retries != attempts-1 {
		t.Errorf("retries = %d, want attempts-1 = %d", retries, attempts-1)
	}
}

func TestRetry_NoRetriesRunsOnce(t *testing.T) {
	r, _ := NewRetry(RetryConfig[int]{MaxRetries: 0})

	attempts := 0
	testErr := errors.New("boom")

	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_NonHandleableReturnsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries:   5,
		ShouldHandle: HandleAll[int]().And(HandleErrors[int](fatal).Not()),
	})

	attempts := 0
	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, fatal
	})

	if err != fatal {
		t.Errorf("Execute() error = %v, want %v", err, fatal)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_UnlimitedSucceedsOnKthAttempt(t *testing.T) {
	const k = 37

	r, _ := NewRetry(RetryConfig[int]{MaxRetries: UnlimitedRetries})

	attempts := 0
	v, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < k {
			return 0, errors.New("not yet")
		}
		return attempts, nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if v != k || attempts != k {
		t.Errorf("attempts = %d, value = %d, want %d", attempts, v, k)
	}
}

func TestRetry_CancellationDuringDelay(t *testing.T) {
	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries: 5,
		Delay:      DelayPolicy{Kind: BackoffConstant, BaseDelay: time.Hour},
	})

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	opErr := errors.New("transient")

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = r.Execute(ctx, func(ctx context.Context) (int, error) {
			attempts++
			return 0, opErr
		})
	}()

	// Let the first attempt fail and the delay begin, then cancel.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Execute() did not unwind after cancellation")
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no attempt after cancellation)", attempts)
	}
}

func TestRetry_CancellationBeforeAttempt(t *testing.T) {
	r, _ := NewRetry(RetryConfig[int]{MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := r.Execute(ctx, func(ctx context.Context) (int, error) {
		attempts++
		return 0, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0", attempts)
	}
}

func TestRetry_OnRetryReceivesComputedDelay(t *testing.T) {
	var delays []time.Duration

	r, _ := NewRetry(RetryConfig[int]{
		MaxRetries: 3,
		Delay:      DelayPolicy{Kind: BackoffExponential, BaseDelay: 10 * time.Millisecond},
		OnRetry: func(attempt int, delay time.Duration, outcome Outcome[int]) {
			delays = append(delays, delay)
		},
	})
	// Capture delays instead of sleeping.
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("fail")
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("got %d delays, want %d", len(delays), len(want))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetry_AttemptNumberInContext(t *testing.T) {
	r, _ := NewRetry(RetryConfig[int]{MaxRetries: 2})

	var seen []int
	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		n, ok := AttemptFromContext(ctx)
		if !ok {
			t.Fatal("attempt number missing from context")
		}
		seen = append(seen, n)
		return 0, errors.New("fail")
	})

	want := []int{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("got %d attempts, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("attempt[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}
