package version

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

const (
	// DefaultBucket is the KV bucket holding mirrored version history.
	DefaultBucket = "natsconf_versions"

	keyPrefix = "v."
)

// KVStore persists configuration versions in a JetStream key-value bucket so
// history survives process restarts. It carries the same numbering contract as
// Store; the counter is recovered from the highest key present at open.
type KVStore struct {
	kv     jetstream.KeyValue
	logger *slog.Logger

	mu      sync.Mutex
	counter int
}

// NewKVStore creates or opens the version bucket and recovers the counter.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string, logger *slog.Logger) (*KVStore, error) {
	if js == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "KVStore", "NewKVStore", "check jetstream handle")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "natsconf configuration version history",
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "KVStore", "NewKVStore", "create/get KV bucket")
	}

	s := &KVStore{kv: kv, logger: logger, counter: 1}
	numbers, err := s.listNumbers(ctx)
	if err != nil {
		return nil, err
	}
	if len(numbers) > 0 {
		s.counter = numbers[len(numbers)-1] + 1
	}

	logger.Debug("opened version bucket", "bucket", bucket, "versions", len(numbers), "next", s.counter)
	return s, nil
}

// Save stores a version under v.<number>, assigning the number from the
// running counter when the caller leaves it non-positive.
func (s *KVStore) Save(ctx context.Context, v *types.ConfigurationVersion) error {
	if v == nil {
		return errors.WrapInvalid(errors.ErrNilVersion, "KVStore", "Save", "check version")
	}

	s.mu.Lock()
	if v.Number <= 0 {
		v.Number = s.counter
		s.counter++
	} else if v.Number+1 > s.counter {
		s.counter = v.Number + 1
	}
	number := v.Number
	s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapFatal(err, "KVStore", "Save", "marshal version")
	}
	if _, err := s.kv.Put(ctx, key(number), data); err != nil {
		return errors.WrapTransient(err, "KVStore", "Save", fmt.Sprintf("put version %d", number))
	}
	return nil
}

// GetVersion returns the version with the given number.
func (s *KVStore) GetVersion(ctx context.Context, number int) (*types.ConfigurationVersion, error) {
	entry, err := s.kv.Get(ctx, key(number))
	if err != nil {
		return nil, errors.WrapNotFound(errors.ErrVersionNotFound, "KVStore", "GetVersion",
			fmt.Sprintf("lookup version %d", number))
	}
	return decode(entry.Value())
}

// GetLatest returns the highest-numbered version present.
func (s *KVStore) GetLatest(ctx context.Context) (*types.ConfigurationVersion, error) {
	numbers, err := s.listNumbers(ctx)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, errors.WrapNotFound(errors.ErrVersionNotFound, "KVStore", "GetLatest", "lookup latest version")
	}
	return s.GetVersion(ctx, numbers[len(numbers)-1])
}

// GetHistory returns up to count versions, newest first.
func (s *KVStore) GetHistory(ctx context.Context, count int) ([]*types.ConfigurationVersion, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if count >= 0 && count < len(all) {
		all = all[:count]
	}
	return all, nil
}

// GetAll returns every version, oldest first.
func (s *KVStore) GetAll(ctx context.Context) ([]*types.ConfigurationVersion, error) {
	numbers, err := s.listNumbers(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]*types.ConfigurationVersion, 0, len(numbers))
	for _, n := range numbers {
		v, err := s.GetVersion(ctx, n)
		if err != nil {
			// Key disappeared between listing and get; skip it.
			s.logger.Warn("version missing during listing", "number", n)
			continue
		}
		all = append(all, v)
	}
	return all, nil
}

// Count returns the number of stored versions.
func (s *KVStore) Count(ctx context.Context) (int, error) {
	numbers, err := s.listNumbers(ctx)
	if err != nil {
		return 0, err
	}
	return len(numbers), nil
}

// Clear deletes every stored version and resets numbering to 1.
func (s *KVStore) Clear(ctx context.Context) error {
	numbers, err := s.listNumbers(ctx)
	if err != nil {
		return err
	}
	for _, n := range numbers {
		if err := s.kv.Purge(ctx, key(n)); err != nil {
			return errors.WrapTransient(err, "KVStore", "Clear", fmt.Sprintf("purge version %d", n))
		}
	}

	s.mu.Lock()
	s.counter = 1
	s.mu.Unlock()
	return nil
}

func (s *KVStore) listNumbers(ctx context.Context) ([]int, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, errors.WrapTransient(err, "KVStore", "listNumbers", "list KV keys")
	}

	numbers := make([]int, 0, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, keyPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(k, keyPrefix))
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func key(number int) string {
	return fmt.Sprintf("%s%d", keyPrefix, number)
}

func decode(data []byte) (*types.ConfigurationVersion, error) {
	var v types.ConfigurationVersion
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.WrapInvalid(err, "KVStore", "decode", "unmarshal version")
	}
	return &v, nil
}
