package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authward/authward/store"
)

const (
	revokeStatusNotFound int64 = 0
	revokeStatusClaimed  int64 = 1
	revokeStatusRevoked  int64 = 2
	revokeStatusCorrupt  int64 = 3
)

// revokeScript flips the revoked flag at its fixed byte offset if and only
// if it is still clear, and stamps updated-at. The compare and the swap run
// inside one EVALSHA so concurrent revokes of the same token produce
// exactly one claimed status.
const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 1) ~= 1 then
  return 3
end
if string.byte(data, 2) == 1 then
  return 2
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl <= 0 then
  return 0
end
local stamp = tonumber(ARGV[1])
local bytes = {}
for i = 8, 1, -1 do
  bytes[i] = string.char(stamp % 256)
  stamp = math.floor(stamp / 256)
end
local updated = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3, 18) .. table.concat(bytes) .. string.sub(data, 27)
redis.call("SET", KEYS[1], updated, "PX", ttl)
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// Store is a Redis-backed [store.TokenStore]. Records are keyed by the
// SHA-256 of the token value so the raw token never appears in Redis, and
// they carry a PX TTL matching the record expiry so expired records vanish
// without a sweeper.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a token [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "aw"
	}
	return &Store{redis: redis, prefix: prefix}
}

func (s *Store) recordKey(tokenHash string) string {
	return s.prefix + ":rt:" + tokenHash
}

func (s *Store) subjectKey(subjectID string) string {
	return s.prefix + ":sub:" + subjectID
}

// Save persists a new refresh token record with a TTL bounded by its
// expiry and indexes it under its subject.
//
//	Performance: 2 Redis commands (SET + SADD) in one transaction.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("record already expired")
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tokenHash := store.HashToken(rec.TokenValue)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(tokenHash), data, ttl)
		pipe.SAdd(ctx, s.subjectKey(rec.SubjectID), tokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return nil
}

// Find returns the record stored under the token value's hash, revoked or
// not. A key evicted by its TTL reads as [store.ErrNotFound].
//
//	Performance: 1 Redis GET.
func (s *Store) Find(ctx context.Context, tokenValue string) (*store.Record, error) {
	data, err := s.redis.Get(ctx, s.recordKey(store.HashToken(tokenValue))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	rec.TokenValue = tokenValue

	return rec, nil
}

// Revoke marks the record revoked if it is not already. claimed reports
// whether this call performed the flip.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) Revoke(ctx context.Context, tokenValue string) (bool, error) {
	key := s.recordKey(store.HashToken(tokenValue))
	return s.revokeKey(ctx, key)
}

func (s *Store) revokeKey(ctx context.Context, key string) (bool, error) {
	code, err := revokeLua.Run(ctx, s.redis, []string{key}, time.Now().Unix()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	switch code {
	case revokeStatusNotFound:
		return false, store.ErrNotFound
	case revokeStatusClaimed:
		return true, nil
	case revokeStatusRevoked:
		return false, nil
	case revokeStatusCorrupt:
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, errCorruptRecord)
	default:
		return false, fmt.Errorf("%w: unknown revoke script status %d", store.ErrUnavailable, code)
	}
}

// RevokeAllForSubject revokes every live record indexed under the subject
// and returns the number flipped.
//
// ATOMICITY NOTE: This operation is NOT fully atomic. It reads the
// subject's index set (SMembers), then revokes each member with the CAS
// script. A record saved between the read and revoke phases will not be
// captured by this call; it will expire naturally or be caught by a later
// call. Members whose record keys already expired are pruned from the
// index as a side effect.
func (s *Store) RevokeAllForSubject(ctx context.Context, subjectID string) (int64, error) {
	subjectKey := s.subjectKey(subjectID)

	tokenHashes, err := s.redis.SMembers(ctx, subjectKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	var (
		revoked int64
		dead    []interface{}
	)
	for _, tokenHash := range tokenHashes {
		claimed, err := s.revokeKey(ctx, s.recordKey(tokenHash))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				dead = append(dead, tokenHash)
				continue
			}
			return revoked, err
		}
		if claimed {
			revoked++
		}
	}

	if len(dead) > 0 {
		if err := s.redis.SRem(ctx, subjectKey, dead...).Err(); err != nil {
			return revoked, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}

	return revoked, nil
}

// PurgeExpired prunes subject index members whose record keys have been
// evicted by their TTL and returns the number pruned. Record keys
// themselves expire on their own; only the index needs sweeping.
//
// This is a maintenance operation (O(n) over subject index sets) and must
// not be used in request hot paths.
func (s *Store) PurgeExpired(ctx context.Context, _ time.Time) (int64, error) {
	pattern := s.prefix + ":sub:*"
	var (
		cursor uint64
		pruned int64
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return pruned, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}

		for _, subjectKey := range keys {
			n, err := s.pruneSubjectIndex(ctx, subjectKey)
			if err != nil {
				return pruned, err
			}
			pruned += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return pruned, nil
}

func (s *Store) pruneSubjectIndex(ctx context.Context, subjectKey string) (int64, error) {
	tokenHashes, err := s.redis.SMembers(ctx, subjectKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if len(tokenHashes) == 0 {
		return 0, nil
	}

	pipe := s.redis.Pipeline()
	existsCmds := make([]*redis.IntCmd, len(tokenHashes))
	for i, tokenHash := range tokenHashes {
		existsCmds[i] = pipe.Exists(ctx, s.recordKey(tokenHash))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	var dead []interface{}
	for i, cmd := range existsCmds {
		v, cmdErr := cmd.Result()
		if cmdErr != nil {
			return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, cmdErr)
		}
		if v == 0 {
			dead = append(dead, tokenHashes[i])
		}
	}
	if len(dead) == 0 {
		return 0, nil
	}

	if err := s.redis.SRem(ctx, subjectKey, dead...).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return int64(len(dead)), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return time.Since(start), nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.redis.Close()
}
