package token

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a client on the test Valkey, skipping the test
// when it is unreachable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // isolated from dev data
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, denyKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestDenylistRevoke(t *testing.T) {
	client := testValkeyClient(t)
	deny := NewDenylist(client)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := deny.IsRevoked(ctx, jti)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh jti should not be revoked")
	}

	if err := deny.Revoke(ctx, jti, time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = deny.IsRevoked(ctx, jti)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected jti to be revoked")
	}

	ttl, err := client.TTL(ctx, denyKeyPrefix+jti).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want (0, 1m]", ttl)
	}
}

func TestManagerWithDenylist(t *testing.T) {
	client := testValkeyClient(t)
	m := NewManager("integration-secret-with-enough-length!", time.Minute, time.Hour, NewDenylist(client))
	ctx := context.Background()

	pair, err := m.IssuePair(uuid.New())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if err := m.Revoke(ctx, pair.Refresh); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, _, err := m.Refresh(ctx, pair.Refresh); err != ErrRevoked {
		t.Errorf("Refresh after revoke: err = %v, want ErrRevoked", err)
	}
}
