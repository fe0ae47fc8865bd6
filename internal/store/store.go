// Package store zapouzdřuje přístup ke key-value úložišti (Valkey/Redis),
// kde drží poslední hodnota každého senzoru.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store je kontrakt, který používá konzument (zápis) i API (čtení).
// Zbytek aplikace neví, že pod ním je Redis.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get vrací found=false, pokud klíč neexistuje (nebo mezitím expiroval).
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Exists(ctx context.Context, key string) (bool, error)
	// ScanKeys vrací všechny klíče začínající prefixem (pořadí není garantováno).
	ScanKeys(ctx context.Context, prefix string) ([]string, error)
}

// scanBatch je nápověda pro SCAN COUNT. Neomezuje výsledek, jen velikost jednoho kroku.
const scanBatch = 100

// RedisStore implementuje Store nad go-redis klientem.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore vytvoří klienta a ověří spojení (Ping), stejně jako persister.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("valkey is not reachable at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient obalí existujícího klienta (testy, sdílený pool).
func NewRedisStoreFromClient(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Ping ověří dostupnost úložiště (health endpointy).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close uzavře spojení při ukončení aplikace.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Klíč neexistuje -> není to chyba, jen "nic".
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("valkey exists %s: %w", key, err)
	}
	return n > 0, nil
}

// ScanKeys používá SCAN místo KEYS, aby neblokoval server při velkém počtu klíčů.
// SCAN může stejný klíč vrátit víckrát, proto deduplikujeme.
func (s *RedisStore) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)

	iter := s.rdb.Scan(ctx, 0, escapePattern(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("valkey scan %s*: %w", prefix, err)
	}
	return keys, nil
}

// escapePattern zneškodní glob znaky v prefixu, aby MATCH bral prefix doslova.
func escapePattern(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
