package service

import (
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newRedisUnknownUserCacheForTest backs a RedisUnknownUserCache with an
// in-process miniredis that is torn down with the test.
func newRedisUnknownUserCacheForTest(t *testing.T, prefix string, ttl time.Duration) (*miniredis.Miniredis, *RedisUnknownUserCache) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, NewRedisUnknownUserCache(client, prefix, ttl)
}

// requireCachedUsernames fails unless exactly the given usernames are stored
// under prefix, as hashed keys.
func requireCachedUsernames(t *testing.T, server *miniredis.Miniredis, prefix string, usernames ...string) {
	t.Helper()
	want := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		want[prefix+":"+hashKey(u)] = true
	}
	keys := server.Keys()
	if len(keys) != len(want) {
		t.Fatalf("expected %d cached usernames, got keys %v", len(want), keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix+":") || !want[k] {
			t.Fatalf("unexpected cache key %q", k)
		}
	}
}
