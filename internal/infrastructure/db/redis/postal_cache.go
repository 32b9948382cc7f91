package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const postalTTL = 24 * time.Hour

// PostalCache fronts a ports.PostalLookup. Only successful lookups are
// cached; cache errors fall through to the upstream.
type PostalCache struct {
	client *redis.Client
	next   ports.PostalLookup
	log    zerolog.Logger
}

func NewPostalCache(client *redis.Client, next ports.PostalLookup, log zerolog.Logger) *PostalCache {
	return &PostalCache{client: client, next: next, log: log}
}

func (c *PostalCache) Lookup(ctx context.Context, pincode string) ([]domain.PostOffice, error) {
	key := "pincode:" + pincode

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var offices []domain.PostOffice
		if jerr := json.Unmarshal(raw, &offices); jerr == nil {
			return offices, nil
		}
		c.log.Warn().Str("pincode", pincode).Msg("discarding unreadable cached pincode entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Msg("pincode cache read failed")
	}

	offices, err := c.next.Lookup(ctx, pincode)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(offices); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, postalTTL).Err(); serr != nil {
			c.log.Warn().Err(serr).Msg("pincode cache write failed")
		}
	}
	return offices, nil
}
