package online

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexgp/race-engine/pkg/model"
)

type fakeEntry struct {
	key   string
	value []byte
}

func (e *fakeEntry) Bucket() string                  { return DefaultBucket }
func (e *fakeEntry) Key() string                     { return e.key }
func (e *fakeEntry) Value() []byte                   { return e.value }
func (e *fakeEntry) Revision() uint64                { return 1 }
func (e *fakeEntry) Created() time.Time              { return time.Time{} }
func (e *fakeEntry) Delta() uint64                   { return 0 }
func (e *fakeEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &fakeEntry{key: key, value: value}, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return 1, nil
}

// blockingKV models an unresponsive server: Get hangs until the
// caller's context expires and returns its error.
type blockingKV struct{}

func (b *blockingKV) Get(ctx context.Context, _ string) (jetstream.KeyValueEntry, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("nats: request failed: %w", ctx.Err())
}

func (b *blockingKV) Put(_ context.Context, _ string, _ []byte) (uint64, error) {
	return 0, errors.New("unreachable")
}

func newTestStore(t *testing.T, kv resultKV, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{
		WithKeyValue(kv),
		WithPollInterval(5 * time.Millisecond),
		WithAwaitTimeout(100 * time.Millisecond),
	}, opts...)
	store, err := NewStore(context.Background(), nil, opts...)
	require.NoError(t, err)
	return store
}

func sampleResult() *model.RaceResult {
	return &model.RaceResult{
		RaceName:   "Monaco Grand Prix",
		Commentary: "Processional but tense.",
		Events:     []string{"Late rain scare"},
		TeamResults: []model.TeamResult{
			{TeamID: 1, Driver1Position: 2, Driver2Position: 7, Points: 24},
		},
		FullClassification: []model.ClassificationEntry{
			{DriverName: "Ayrton Senna", TeamName: "Apex GP", Position: 1, Points: 25},
		},
	}
}

func TestPublishThenAwait(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(t, kv)

	require.NoError(t, store.PublishResult(context.Background(), "abc123", sampleResult()))

	got, err := store.AwaitResult(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), got)
}

// room codes are case-insensitive on both ends
func TestRoomKeyNormalization(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(t, kv)

	require.NoError(t, store.PublishResult(context.Background(), "AbC123 ", sampleResult()))
	got, err := store.AwaitResult(context.Background(), " abc123")
	require.NoError(t, err)
	assert.Equal(t, "Monaco Grand Prix", got.RaceName)
}

func TestAwaitResultArrivesLate(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(t, kv)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = store.PublishResult(context.Background(), "room42", sampleResult())
	}()
	got, err := store.AwaitResult(context.Background(), "room42")
	require.NoError(t, err)
	assert.Equal(t, "Monaco Grand Prix", got.RaceName)
}

func TestAwaitResultTimeout(t *testing.T) {
	store := newTestStore(t, newFakeKV())
	_, err := store.AwaitResult(context.Background(), "nobody-home")
	assert.ErrorIs(t, err, ErrAwaitTimeout)
}

// the deadline may also strike mid-lookup; the caller still gets the
// distinct timeout outcome, not the transport error
func TestAwaitResultTimeoutDuringGet(t *testing.T) {
	store := newTestStore(t, &blockingKV{})
	_, err := store.AwaitResult(context.Background(), "nobody-home")
	assert.ErrorIs(t, err, ErrAwaitTimeout)
}

func TestAwaitResultCancelledDuringGet(t *testing.T) {
	store := newTestStore(t, &blockingKV{}, WithAwaitTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := store.AwaitResult(ctx, "nobody-home")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAwaitTimeout)
}

func TestAwaitResultCancelled(t *testing.T) {
	store := newTestStore(t, newFakeKV(), WithAwaitTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := store.AwaitResult(ctx, "nobody-home")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAwaitTimeout)
}

func TestNewRoomCode(t *testing.T) {
	code := NewRoomCode()
	assert.Len(t, code, 6)
	assert.Equal(t, code, roomKey(code))
}
