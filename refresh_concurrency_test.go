package authward

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// Concurrent rotations of the same presented token must produce exactly
// one successor pair. The store's conditional revoke is the arbiter:
// losers observe the token as already spent.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	f := newEngineFixture(t, nil)
	reg := f.register(t, "u1@x.com", "Secret123!")

	const goroutines = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []string
	)

	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, refresh, err := f.engine.Refresh(context.Background(), reg.Tokens.RefreshToken)
			if err != nil {
				if !errors.Is(err, ErrInvalidOrExpiredToken) {
					t.Errorf("loser got %v, want ErrInvalidOrExpiredToken", err)
				}
				return
			}

			mu.Lock()
			successes = append(successes, refresh)
			mu.Unlock()
		}()
	}

	close(start)
	wg.Wait()

	if len(successes) != 1 {
		t.Fatalf("got %d successful rotations, want exactly 1", len(successes))
	}

	// The winner's successor is live.
	if _, _, err := f.engine.Refresh(context.Background(), successes[0]); err != nil {
		t.Fatalf("successor refresh: %v", err)
	}
}

// A rotation racing LogoutEverywhere may win or lose, but the subject must
// end up fully logged out once the bulk revoke has run after it.
func TestRefreshRacingLogoutEverywhere(t *testing.T) {
	f := newEngineFixture(t, nil)
	reg := f.register(t, "u1@x.com", "Secret123!")

	var wg sync.WaitGroup
	var rotated string

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, refresh, err := f.engine.Refresh(context.Background(), reg.Tokens.RefreshToken)
		if err == nil {
			rotated = refresh
		}
	}()
	go func() {
		defer wg.Done()
		if err := f.engine.LogoutEverywhere(context.Background(), reg.SubjectID); err != nil {
			t.Errorf("LogoutEverywhere: %v", err)
		}
	}()
	wg.Wait()

	// Settle: a successor issued after the bulk revoke is legitimate, so
	// revoke once more before asserting totality.
	if err := f.engine.LogoutEverywhere(context.Background(), reg.SubjectID); err != nil {
		t.Fatalf("settling LogoutEverywhere: %v", err)
	}

	if rotated != "" {
		if _, _, err := f.engine.Refresh(context.Background(), rotated); !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Fatalf("successor after total logout: got %v, want ErrInvalidOrExpiredToken", err)
		}
	}
	if _, _, err := f.engine.Refresh(context.Background(), reg.Tokens.RefreshToken); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("original after total logout: got %v, want ErrInvalidOrExpiredToken", err)
	}
}
