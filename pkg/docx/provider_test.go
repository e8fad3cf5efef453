package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func bundleBytes(t *testing.T) []byte {
	t.Helper()

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	entry, err := writer.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return out.Bytes()
}

func TestProviderAcquiresRemoteBundleOnce(t *testing.T) {
	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = w.Write(bundleBytes(t))
	}))
	defer server.Close()

	provider := NewProvider(ProviderConfig{BundleURL: server.URL}, zerolog.New(io.Discard))

	const callers = 16
	var wg sync.WaitGroup
	engines := make([]*Engine, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			engine, err := provider.Acquire(context.Background())
			require.NoError(t, err)
			engines[slot] = engine
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), fetches.Load(), "concurrent callers must share one fetch")
	for _, engine := range engines {
		require.Same(t, engines[0], engine)
	}

	// Subsequent acquisition reuses the cached engine.
	again, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, engines[0], again)
	require.Equal(t, int64(1), fetches.Load())
}

func TestProviderFallsBackWhenRemoteFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewProvider(ProviderConfig{BundleURL: server.URL}, zerolog.New(io.Discard))

	engine, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, engine)

	doc, err := engine.NewBuilder().Bytes()
	require.NoError(t, err)
	require.NoError(t, ValidatePackage(doc))
}

func TestProviderWithoutBundleURLUsesFallback(t *testing.T) {
	provider := NewProvider(ProviderConfig{}, zerolog.New(io.Discard))

	engine, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestProviderRejectsGarbageBundleAndFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not an archive"))
	}))
	defer server.Close()

	provider := NewProvider(ProviderConfig{BundleURL: server.URL}, zerolog.New(io.Discard))

	engine, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, engine)
}
