package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authward/authward/store"
)

func newTokenStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewStore(rdb, "aw")
	return s, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testRecord(tokenValue, subjectID string) *store.Record {
	now := time.Now().UTC().Truncate(time.Second)
	return &store.Record{
		ID:         "rec-" + tokenValue,
		TokenValue: tokenValue,
		SubjectID:  subjectID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestSaveFindRoundTrip(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()
	ctx := context.Background()

	rec := testRecord("tok-1", "u-1")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != rec.ID || got.SubjectID != rec.SubjectID || got.Revoked {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.TokenValue != "tok-1" {
		t.Fatalf("token value = %q, want tok-1", got.TokenValue)
	}
	if !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("expiresAt = %v, want %v", got.ExpiresAt, rec.ExpiresAt)
	}
}

func TestFindMissingReturnsNotFound(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()

	_, err := s.Find(context.Background(), "no-such-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRejectsExpiredRecord(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()

	rec := testRecord("tok-stale", "u-1")
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.Save(context.Background(), rec); err == nil {
		t.Fatal("expected error saving expired record")
	}
}

func TestRevokeClaimsExactlyOnce(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("tok-1", "u-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	claimed, err := s.Revoke(ctx, "tok-1")
	if err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if !claimed {
		t.Fatal("first revoke did not claim")
	}

	claimed, err = s.Revoke(ctx, "tok-1")
	if err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if claimed {
		t.Fatal("second revoke claimed an already revoked record")
	}

	got, err := s.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("find after revoke: %v", err)
	}
	if !got.Revoked {
		t.Fatal("record not marked revoked")
	}
	if got.Valid(time.Now()) {
		t.Fatal("revoked record reported valid")
	}
}

func TestRevokeMissingReturnsNotFound(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()

	_, err := s.Revoke(context.Background(), "no-such-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRevokeCorruptBlob(t *testing.T) {
	s, mr, done := newTokenStoreTest(t)
	defer done()
	ctx := context.Background()

	key := s.recordKey(store.HashToken("tok-bad"))
	mr.Set(key, "bad")
	mr.SetTTL(key, time.Hour)

	_, err := s.Revoke(ctx, "tok-bad")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRevokeAllForSubject(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()
	ctx := context.Background()

	for _, tok := range []string{"tok-1", "tok-2", "tok-3"} {
		if err := s.Save(ctx, testRecord(tok, "u-1")); err != nil {
			t.Fatalf("save %s: %v", tok, err)
		}
	}
	if err := s.Save(ctx, testRecord("tok-other", "u-2")); err != nil {
		t.Fatalf("save other: %v", err)
	}

	// One token already revoked; it must not be counted again.
	if _, err := s.Revoke(ctx, "tok-2"); err != nil {
		t.Fatalf("pre-revoke: %v", err)
	}

	n, err := s.RevokeAllForSubject(ctx, "u-1")
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 2 {
		t.Fatalf("revoked = %d, want 2", n)
	}

	for _, tok := range []string{"tok-1", "tok-2", "tok-3"} {
		got, err := s.Find(ctx, tok)
		if err != nil {
			t.Fatalf("find %s: %v", tok, err)
		}
		if !got.Revoked {
			t.Fatalf("%s not revoked", tok)
		}
	}

	other, err := s.Find(ctx, "tok-other")
	if err != nil {
		t.Fatalf("find other: %v", err)
	}
	if other.Revoked {
		t.Fatal("unrelated subject's token was revoked")
	}
}

func TestRevokeAllForSubjectEmpty(t *testing.T) {
	s, _, done := newTokenStoreTest(t)
	defer done()

	n, err := s.RevokeAllForSubject(context.Background(), "u-nobody")
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 0 {
		t.Fatalf("revoked = %d, want 0", n)
	}
}

func TestPurgeExpiredPrunesIndex(t *testing.T) {
	s, mr, done := newTokenStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("tok-live", "u-1")); err != nil {
		t.Fatalf("save live: %v", err)
	}
	if err := s.Save(ctx, testRecord("tok-gone", "u-1")); err != nil {
		t.Fatalf("save gone: %v", err)
	}

	// Let the second record's key expire; its index member stays behind.
	mr.SetTTL(s.recordKey(store.HashToken("tok-gone")), time.Millisecond)
	mr.FastForward(time.Second)

	pruned, err := s.PurgeExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}

	if _, err := s.Find(ctx, "tok-live"); err != nil {
		t.Fatalf("live record lost: %v", err)
	}
}
