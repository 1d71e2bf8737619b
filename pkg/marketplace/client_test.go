package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/modelscan/internal/cache"
)

// memCache is an in-memory PageCache for unit tests.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(rawURL string, params url.Values) ([]byte, bool) {
	body, ok := m.entries[rawURL+"?"+params.Encode()]
	return body, ok
}

func (m *memCache) Put(rawURL string, params url.Values, body []byte) error {
	m.entries[rawURL+"?"+params.Encode()] = body
	return nil
}

func pageBody(t *testing.T, names []string, nextPageURL string) []byte {
	t.Helper()
	results := make([]RawModel, 0, len(names))
	for _, n := range names {
		results = append(results, RawModel{"name": n})
	}
	body, err := json.Marshal(map[string]any{
		"results":       results,
		"next_page_url": nextPageURL,
	})
	require.NoError(t, err)
	return body
}

func TestFetchPage_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "models", r.URL.Query().Get("type"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("model_family"))

		w.Header().Set("Content-Type", "application/json")
		w.Write(pageBody(t, []string{"gpt-4o", "phi-3"}, "/marketplace?page=2"))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithUserAgent("test-agent"))
	got, err := client.FetchPage(context.Background(), 1, "")

	require.NoError(t, err)
	assert.Len(t, got.Results, 2)
	assert.True(t, got.HasNextPage)
	assert.Equal(t, "/marketplace?page=2", got.NextPageURL)
}

func TestFetchPage_FamilyParam(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DeepSeek", r.URL.Query().Get("model_family"))
		w.Write(pageBody(t, []string{"deepseek-r1"}, ""))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.FetchPage(context.Background(), 1, "DeepSeek")

	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
}

func TestFetchPage_FullPageImpliesContinuation(t *testing.T) {
	t.Parallel()

	names := make([]string, 20)
	for i := range names {
		names[i] = "model"
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pageBody(t, names, ""))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithPageSize(20))
	got, err := client.FetchPage(context.Background(), 1, "")

	require.NoError(t, err)
	assert.True(t, got.HasNextPage)
}

func TestFetchPage_ShortPageNoContinuation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pageBody(t, []string{"last-model"}, ""))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithPageSize(20))
	got, err := client.FetchPage(context.Background(), 1, "")

	require.NoError(t, err)
	assert.False(t, got.HasNextPage)
}

func TestFetchPage_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`blocked`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPage(context.Background(), 3, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3")
	assert.Contains(t, err.Error(), "403")
}

func TestFetchPage_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPage(context.Background(), 1, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestFetchPage_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(pageBody(t, []string{"cached-model"}, ""))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithCache(newMemCache()))

	first, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	second, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.Results, second.Results)
}

func TestFetchPage_CacheExpiryRefetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(pageBody(t, []string{"model"}, ""))
	}))
	defer srv.Close()

	ttl := 150 * time.Millisecond
	client := NewClient(WithBaseURL(srv.URL), WithCache(cache.New(t.TempDir(), ttl)))

	// Two fetches inside the freshness window share one network call.
	_, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	_, err = client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Once the window elapses the entry is stale and the page is refetched.
	time.Sleep(ttl + 50*time.Millisecond)
	got, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_CacheKeyedByParams(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(pageBody(t, []string{"model"}, ""))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithCache(newMemCache()))

	_, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	_, err = client.FetchPage(context.Background(), 2, "")
	require.NoError(t, err)
	_, err = client.FetchPage(context.Background(), 1, "DeepSeek")
	require.NoError(t, err)

	// Different pages and different family narrow to distinct cache keys.
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPage_CorruptCacheEntryRefetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(pageBody(t, []string{"model"}, ""))
	}))
	defer srv.Close()

	mc := newMemCache()
	client := NewClient(WithBaseURL(srv.URL), WithCache(mc))

	params := url.Values{}
	params.Set("type", "models")
	params.Set("page", "1")
	require.NoError(t, mc.Put(srv.URL, params, []byte(`{not json`)))

	got, err := client.FetchPage(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPage_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPage(ctx, 1, "")

	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient()
	hc := c.(*httpClient)
	assert.Equal(t, DefaultBaseURL, hc.baseURL)
	assert.Equal(t, defaultPageSize, hc.pageSize)
	assert.NotNil(t, hc.limiter)
	assert.Equal(t, 30*time.Second, hc.http.Timeout)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	customClient := &http.Client{}
	c := NewClient(WithHTTPClient(customClient))
	hc := c.(*httpClient)
	assert.Equal(t, customClient, hc.http)
}
