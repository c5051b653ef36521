package engine_test

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/kvstore/internal/engine"
	kverrors "github.com/iamNilotpal/kvstore/pkg/errors"
	"github.com/iamNilotpal/kvstore/pkg/options"
)

const testFileSize = 64 * 1024

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")

	e, err := engine.Open(&engine.Config{
		Options: &options.Options{FilePath: path, FileSize: testFileSize},
		Logger:  zapNop(),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = e.Close() })
	return e
}

func strPtr(s string) *string { return &s }

func TestSetGetRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("foo", strPtr("bar"), 0))

	v, ok, err := e.Get("foo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestLastWriteWins(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v1"), 0))
	require.NoError(t, e.Set("k", strPtr("v2"), 0))

	v, ok, err := e.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestDeletion(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v"), 0))

	deleted, err := e.Del("k")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok, err := e.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	deletedAgain, err := e.Del("k")
	require.NoError(t, err)
	assert.False(t, deletedAgain)
}

func TestLazyExpiry(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("e", strPtr("x"), 50))

	time.Sleep(80 * time.Millisecond)

	_, ok, err := e.Get("e")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNonPositiveTTLNeverExpires(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v"), -100))

	time.Sleep(10 * time.Millisecond)

	v, ok, err := e.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestExpireOnMissingKey(t *testing.T) {
	e := newTestEngine(t)

	ok, err := e.Expire("nope", 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpireClearsTTL(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v"), 10))

	cleared, err := e.Expire("k", 0)
	require.NoError(t, err)
	assert.True(t, cleared)

	time.Sleep(20 * time.Millisecond)

	v, ok, err := e.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestExpireNegativeTTLRejected(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v"), 0))

	_, err := e.Expire("k", -1)
	require.Error(t, err)
	assert.True(t, kverrors.IsValidationError(err))
}

func TestBlankKeyRejectedOnAllOperations(t *testing.T) {
	e := newTestEngine(t)

	_, _, err := e.Get("   ")
	assert.True(t, kverrors.IsValidationError(err))

	err = e.Set("", strPtr("v"), 0)
	assert.True(t, kverrors.IsValidationError(err))

	_, err = e.Del("\t\n")
	assert.True(t, kverrors.IsValidationError(err))

	_, err = e.Expire(" ", 0)
	assert.True(t, kverrors.IsValidationError(err))
}

func TestNullValueRejected(t *testing.T) {
	e := newTestEngine(t)
	err := e.Set("k", nil, 0)
	assert.True(t, kverrors.IsValidationError(err))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	e1, err := engine.Open(&engine.Config{
		Options: &options.Options{FilePath: path, FileSize: testFileSize},
		Logger:  zapNop(),
	})
	require.NoError(t, err)
	require.NoError(t, e1.Set("k", strPtr("v"), 0))
	require.NoError(t, e1.Close())

	e2, err := engine.Open(&engine.Config{
		Options: &options.Options{FilePath: path, FileSize: testFileSize},
		Logger:  zapNop(),
	})
	require.NoError(t, err)
	defer e2.Close()

	v, ok, err := e2.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCapacityExhausted(t *testing.T) {
	e := newTestEngine(t)
	big := strings.Repeat("x", testFileSize)

	err := e.Set("big", strPtr(big), 0)
	require.Error(t, err)
	assert.True(t, kverrors.IsCapacityError(err))

	_, ok, err := e.Get("big")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnicodeClean(t *testing.T) {
	e := newTestEngine(t)
	key := "キー🔑"
	value := "väluê 🎉"

	require.NoError(t, e.Set(key, strPtr(value), 0))

	v, ok, err := e.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, value, v)
}

func TestPerThreadSerialConsistency(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "k" + strconv.Itoa(i)
			value := "v" + strconv.Itoa(i)
			require.NoError(t, e.Set(key, strPtr(value), 0))
			v, ok, err := e.Get(key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, value, v)
		}()
	}
	wg.Wait()
}

func TestNoLostUpdatesAcrossDisjointKeys(t *testing.T) {
	e := newTestEngine(t)

	const threads = 10
	const perThread = 20

	var wg sync.WaitGroup
	for t0 := 0; t0 < threads; t0++ {
		t0 := t0
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				key := "t" + strconv.Itoa(t0) + "-k" + strconv.Itoa(i)
				value := "t" + strconv.Itoa(t0) + "-v" + strconv.Itoa(i)
				require.NoError(t, e.Set(key, strPtr(value), 0))
			}
		}()
	}
	wg.Wait()

	for t0 := 0; t0 < threads; t0++ {
		for i := 0; i < perThread; i++ {
			key := "t" + strconv.Itoa(t0) + "-k" + strconv.Itoa(i)
			want := "t" + strconv.Itoa(t0) + "-v" + strconv.Itoa(i)
			v, ok, err := e.Get(key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want, v)
		}
	}
}

func TestConcurrentExpire(t *testing.T) {
	e := newTestEngine(t)

	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, e.Set("k"+strconv.Itoa(i), strPtr("v"), 0))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := e.Expire("k"+strconv.Itoa(i), 50)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	time.Sleep(80 * time.Millisecond)

	for i := 0; i < n; i++ {
		_, ok, err := e.Get("k" + strconv.Itoa(i))
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Set("k", strPtr("v"), 0))

	stats := e.Stats()
	assert.Equal(t, testFileSize, stats.FileSize)
	assert.Equal(t, 1, stats.LiveKeys)
	assert.Greater(t, stats.WriteOffset, 0)
	assert.Equal(t, testFileSize-stats.WriteOffset, stats.Remaining)
}
