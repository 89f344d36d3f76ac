// Package online shares race results between participants of a
// pseudo-multiplayer session through a NATS JetStream key-value bucket.
// The host resolves the race and publishes the result under the room
// code; every other participant polls until it appears. The wait is
// bounded: context cancellation and a configurable timeout both end it,
// a timeout being reported as the distinct ErrAwaitTimeout outcome.
package online

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/model"
)

const (
	DefaultBucket       = "race-results"
	DefaultPollInterval = 2 * time.Second
	DefaultAwaitTimeout = 2 * time.Minute
)

var ErrAwaitTimeout = errors.New("timed out waiting for shared race result")

// resultKV is the slice of the JetStream KeyValue API the store needs.
type resultKV interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

type (
	Store struct {
		kv           resultKV
		bucket       string
		pollInterval time.Duration
		awaitTimeout time.Duration
		l            *log.Logger
	}
	Option func(*Store)
)

func WithBucket(name string) Option {
	return func(s *Store) { s.bucket = name }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

func WithAwaitTimeout(d time.Duration) Option {
	return func(s *Store) { s.awaitTimeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.l = l }
}

// WithKeyValue bypasses bucket setup; used by tests.
func WithKeyValue(kv resultKV) Option {
	return func(s *Store) { s.kv = kv }
}

func NewStore(ctx context.Context, conn *nats.Conn, opts ...Option) (*Store, error) {
	ret := &Store{
		bucket:       DefaultBucket,
		pollInterval: DefaultPollInterval,
		awaitTimeout: DefaultAwaitTimeout,
		l:            log.Default().Named("online"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.kv == nil {
		js, err := jetstream.New(conn)
		if err != nil {
			return nil, err
		}
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket: ret.bucket,
		})
		if err != nil {
			return nil, err
		}
		ret.kv = kv
	}
	return ret, nil
}

// NewRoomCode returns a short join code for a fresh session.
func NewRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}

func roomKey(room string) string {
	return strings.ToUpper(strings.TrimSpace(room))
}

// PublishResult stores the resolved race under the room code. Called by
// the host once per race.
func (s *Store) PublishResult(
	ctx context.Context,
	room string,
	result *model.RaceResult,
) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, roomKey(room), data); err != nil {
		return err
	}
	s.l.Debug("published race result",
		log.String("room", roomKey(room)),
		log.String("race", result.RaceName))
	return nil
}

// AwaitResult polls the bucket until the host's result arrives, the
// caller cancels, or the await timeout elapses.
func (s *Store) AwaitResult(
	ctx context.Context,
	room string,
) (*model.RaceResult, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, s.awaitTimeout, ErrAwaitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		entry, err := s.kv.Get(ctx, roomKey(room))
		switch {
		case err == nil:
			var result model.RaceResult
			if err := json.Unmarshal(entry.Value(), &result); err != nil {
				return nil, err
			}
			return &result, nil
		case ctx.Err() != nil:
			// a lookup cut short by the deadline reports the timeout,
			// not the transport error it surfaced as
			return nil, context.Cause(ctx)
		case !errors.Is(err, jetstream.ErrKeyNotFound):
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		case <-ticker.C:
		}
	}
}
