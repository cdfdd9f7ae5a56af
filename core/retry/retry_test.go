package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFibonacci(t *testing.T) {
	backoff := Fibonacci(time.Second)

	want := []time.Duration{
		1 * time.Second,
		1 * time.Second,
		2 * time.Second,
		3 * time.Second,
		5 * time.Second,
		8 * time.Second,
		13 * time.Second,
	}
	for i, w := range want {
		if got := backoff(i); got != w {
			t.Errorf("Fibonacci(1s)(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		successOn int // 1-based attempt on which fn reports done; 0 = never
		fnErr     error
		wantDone  bool
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "succeeds first attempt",
			attempts:  10,
			successOn: 1,
			wantDone:  true,
			wantCalls: 1,
		},
		{
			name:      "succeeds after retries",
			attempts:  10,
			successOn: 4,
			wantDone:  true,
			wantCalls: 4,
		},
		{
			name:      "exhausts attempts",
			attempts:  3,
			successOn: 0,
			wantDone:  false,
			wantCalls: 3,
		},
		{
			name:      "fn errors do not stop polling",
			attempts:  5,
			successOn: 0,
			fnErr:     errors.New("transient"),
			wantDone:  false,
			wantCalls: 5,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			done, err := Do(context.Background(), tt.attempts, Constant(0), func(ctx context.Context) (bool, error) {
				calls++
				if tt.fnErr != nil {
					return false, tt.fnErr
				}
				return tt.successOn > 0 && calls >= tt.successOn, nil
			})

			if done != tt.wantDone {
				t.Errorf("done = %v, want %v", done, tt.wantDone)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	done, err := Do(ctx, 5, Constant(time.Millisecond), func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})

	if done {
		t.Error("done = true, want false on canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
