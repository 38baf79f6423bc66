// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// denyKeyPrefix namespaces revoked token IDs in Valkey.
const denyKeyPrefix = "revoked:"

// Denylist stores revoked refresh token IDs in Valkey. Entries expire
// together with the token they block.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a denylist backed by the given Valkey client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks jti as revoked for ttl.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := d.client.Set(ctx, denyKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist store: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is on the denylist.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, denyKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("denylist get: %w", err)
	}
	return true, nil
}
