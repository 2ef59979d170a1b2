package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"signals_bot/internal/models"

	"github.com/stretchr/testify/require"
)

func newSignal(pair, tf string) *models.Signal {
	return &models.Signal{
		Pair:       pair,
		Direction:  models.DirectionBuy,
		Strategy:   models.StrategyEMACross,
		Timeframe:  tf,
		Entry:      110,
		Stop:       100,
		Targets:    []float64{120, 130, 140},
		Confidence: 0.8,
		Momentum:   models.MomentumHigh,
	}
}

func newTestStore(t *testing.T) (*FileStore, *time.Time) {
	t.Helper()
	f, err := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	clock := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return clock }
	return f, &clock
}

func TestAddAssignsIdentity(t *testing.T) {
	f, clock := newTestStore(t)
	ctx := context.Background()

	sig := newSignal("BTC/USDT", "5m")
	id, err := f.Add(ctx, sig)
	require.NoError(t, err)

	require.Equal(t, id, sig.ID)
	require.NotEmpty(t, sig.ID)
	require.Equal(t, int64(1), sig.Serial)
	require.True(t, sig.Active)
	require.Equal(t, *clock, sig.CreatedAt)
}

func TestAddRejectsDuplicateFingerprint(t *testing.T) {
	f, _ := newTestStore(t)
	ctx := context.Background()

	_, err := f.Add(ctx, newSignal("BTC/USDT", "5m"))
	require.NoError(t, err)

	_, err = f.Add(ctx, newSignal("BTC/USDT", "5m"))
	require.ErrorIs(t, err, ErrDuplicate)

	// другой таймфрейм — другой fingerprint
	_, err = f.Add(ctx, newSignal("BTC/USDT", "15m"))
	require.NoError(t, err)
}

func TestExistsHonorsActiveFlag(t *testing.T) {
	f, _ := newTestStore(t)
	ctx := context.Background()

	sig := newSignal("BTC/USDT", "5m")
	_, err := f.Add(ctx, sig)
	require.NoError(t, err)
	require.True(t, f.Exists(ctx, sig.Fingerprint()))

	// деактивированная запись дедупликацию не блокирует
	f.mu.Lock()
	f.cache[0].Active = false
	f.mu.Unlock()
	require.False(t, f.Exists(ctx, sig.Fingerprint()))
}

func TestTTLSweep(t *testing.T) {
	f, clock := newTestStore(t)
	ctx := context.Background()

	sig := newSignal("BTC/USDT", "5m")
	_, err := f.Add(ctx, sig)
	require.NoError(t, err)

	*clock = clock.Add(23 * time.Hour)
	require.True(t, f.Exists(ctx, sig.Fingerprint()))
	require.Len(t, f.ActiveSignals(ctx), 1)

	*clock = clock.Add(2 * time.Hour)
	require.False(t, f.Exists(ctx, sig.Fingerprint()))
	require.Empty(t, f.ActiveSignals(ctx))

	// после чистки тот же fingerprint можно добавить заново
	_, err = f.Add(ctx, newSignal("BTC/USDT", "5m"))
	require.NoError(t, err)
}

func TestUnknownTimeframeNeverExpires(t *testing.T) {
	f, clock := newTestStore(t)
	ctx := context.Background()

	sig := newSignal("BTC/USDT", "7m")
	_, err := f.Add(ctx, sig)
	require.NoError(t, err)

	*clock = clock.Add(48 * time.Hour)
	require.True(t, f.Exists(ctx, sig.Fingerprint()))
}

func TestSerialsNotReusedAfterRemove(t *testing.T) {
	f, _ := newTestStore(t)
	ctx := context.Background()

	first := newSignal("BTC/USDT", "5m")
	_, err := f.Add(ctx, first)
	require.NoError(t, err)

	require.NoError(t, f.Remove(ctx, first.ID))

	second := newSignal("BTC/USDT", "5m")
	_, err = f.Add(ctx, second)
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Serial)
}

func TestReloadResumesSerials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	ctx := context.Background()

	f, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = f.Add(ctx, newSignal("BTC/USDT", "5m"))
	require.NoError(t, err)
	_, err = f.Add(ctx, newSignal("ETH/USDT", "5m"))
	require.NoError(t, err)

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	require.Len(t, reloaded.ActiveSignals(ctx), 2)

	sig := newSignal("SOL/USDT", "5m")
	_, err = reloaded.Add(ctx, sig)
	require.NoError(t, err)
	require.Equal(t, int64(3), sig.Serial)
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{garbage"), 0o644))

	f, err := NewFileStore(path)
	require.NoError(t, err)
	require.Empty(t, f.ActiveSignals(context.Background()))
}

func TestRemoveMissingIsNoop(t *testing.T) {
	f, _ := newTestStore(t)
	require.NoError(t, f.Remove(context.Background(), "no-such-id"))
}

func TestClear(t *testing.T) {
	f, _ := newTestStore(t)
	ctx := context.Background()

	_, err := f.Add(ctx, newSignal("BTC/USDT", "5m"))
	require.NoError(t, err)

	require.NoError(t, f.Clear(ctx))
	require.Empty(t, f.ActiveSignals(ctx))
}
