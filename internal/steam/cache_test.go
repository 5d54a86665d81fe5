package steam

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewCache(ttl)
	c.now = clock.Now
	return c, clock
}

func TestCacheHitSuppressesFetch(t *testing.T) {
	c, clock := newTestCache(3600 * time.Second)
	calls := 0
	fetch := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"v":1}`), nil
	}

	first, err := c.GetOrFetch("appdetails|appids=570", fetch)
	require.NoError(t, err)

	// TTL窗口内第二次调用：直接命中，fetch不再执行
	clock.Advance(1800 * time.Second)
	second, err := c.GetOrFetch("appdetails|appids=570", fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.JSONEq(t, string(first), string(second))
}

func TestCacheExpiryTriggersRefetch(t *testing.T) {
	c, clock := newTestCache(3600 * time.Second)
	calls := 0
	fetch := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(fmt.Sprintf(`{"call":%d}`, calls)), nil
	}

	_, err := c.GetOrFetch("k", fetch)
	require.NoError(t, err)

	// 刚好超过TTL：视同未命中，重新抓取并覆盖旧payload
	clock.Advance(3601 * time.Second)
	payload, err := c.GetOrFetch("k", fetch)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.JSONEq(t, `{"call":2}`, string(payload))
	assert.Equal(t, 1, c.Len()) // 同一指纹覆盖而非追加
}

func TestFailedFetchNeverCaches(t *testing.T) {
	c, _ := newTestCache(3600 * time.Second)
	calls := 0
	failing := func() (json.RawMessage, error) {
		calls++
		return nil, errors.New("HTTP 503")
	}

	_, err := c.GetOrFetch("k", failing)
	require.Error(t, err)
	// 失败不写缓存：紧接着的调用仍会执行fetch
	_, err = c.GetOrFetch("k", failing)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestFailedRefreshKeepsStaleEntry(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)

	_, err := c.GetOrFetch("k", func() (json.RawMessage, error) {
		return json.RawMessage(`{"v":"old"}`), nil
	})
	require.NoError(t, err)

	// 过期后刷新失败：错误上抛，旧条目原样保留，缓存不被污染
	clock.Advance(61 * time.Second)
	_, err = c.GetOrFetch("k", func() (json.RawMessage, error) {
		return nil, errors.New("timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 1, c.Len())

	// 下一次成功刷新覆盖旧payload
	payload, err := c.GetOrFetch("k", func() (json.RawMessage, error) {
		return json.RawMessage(`{"v":"new"}`), nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"new"}`, string(payload))
}

func TestCacheScenarioTTL3600(t *testing.T) {
	// 规格场景：t=0抓取，t=1800命中，t=3601重新抓取并替换
	c, clock := newTestCache(3600 * time.Second)
	calls := 0
	fetch := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(fmt.Sprintf(`{"n":%d}`, calls)), nil
	}
	fp := "appdetails|appids=570"

	_, err := c.GetOrFetch(fp, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	clock.Advance(1800 * time.Second)
	payload, err := c.GetOrFetch(fp, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "t=1800应命中缓存，零网络调用")
	assert.JSONEq(t, `{"n":1}`, string(payload))

	clock.Advance(1801 * time.Second) // t=3601
	payload, err = c.GetOrFetch(fp, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "t=3601应重新抓取")
	assert.JSONEq(t, `{"n":2}`, string(payload))
}
