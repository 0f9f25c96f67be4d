package acquire

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name string
	body string
	dir  bool
}

func buildTarball(t *testing.T, entries ...tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

type registry struct {
	server        *httptest.Server
	tarball       []byte
	metadataCalls atomic.Int32
	failFirst     atomic.Int32
}

func newRegistry(t *testing.T, tarball []byte) *registry {
	t.Helper()
	r := &registry{tarball: tarball}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/tarball.tgz" {
			_, _ = w.Write(r.tarball)
			return
		}
		r.metadataCalls.Add(1)
		if r.failFirst.Load() > 0 {
			r.failFirst.Add(-1)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if req.URL.Path != "/@iconify/json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"name": "@iconify/json",
			"dist-tags": {"latest": "2.2.0"},
			"versions": {
				"1.0.0": {"dist": {"tarball": "%[1]s/tarball.tgz"}},
				"1.5.0": {"dist": {"tarball": "%[1]s/tarball.tgz"}},
				"2.2.0": {"dist": {"tarball": "%[1]s/tarball.tgz"}}
			}
		}`, r.server.URL)
	}))
	t.Cleanup(r.server.Close)
	return r
}

func validTarball(t *testing.T) []byte {
	return buildTarball(t,
		tarEntry{name: "package/", dir: true},
		tarEntry{name: "package/collections.json", body: `{"demo":{"name":"Demo"}}`},
		tarEntry{name: "package/json/demo.json", body: `{"prefix":"demo","icons":{}}`},
	)
}

func newTestGate(t *testing.T, registryURL string, opts Options) (*Gate, string) {
	t.Helper()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	opts.CacheDir = cacheDir
	opts.RegistryURL = registryURL
	opts.RetryDelay = time.Millisecond
	opts.Timeout = 5 * time.Second
	return NewGate(afero.NewOsFs(), opts), cacheDir
}

func TestGate_Acquire(t *testing.T) {
	t.Run("Should return the cache without fetching", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll(filepath.Join("cache", "package"), 0o755))
		gate := NewGate(fs, Options{CacheDir: "cache", RegistryURL: "http://127.0.0.1:1"})

		res, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &Result{ContentRoot: filepath.Join("cache", "package"), Version: CachedVersion}, res)
	})

	t.Run("Should download and unpack the latest version", func(t *testing.T) {
		reg := newRegistry(t, validTarball(t))
		gate, cacheDir := newTestGate(t, reg.server.URL, Options{})

		res, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2.2.0", res.Version)
		assert.Equal(t, filepath.Join(cacheDir, "package"), res.ContentRoot)
		data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(res.ContentRoot, "json", "demo.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"prefix":"demo"`)

		again, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CachedVersion, again.Version)
		assert.Equal(t, int32(1), reg.metadataCalls.Load())
	})

	t.Run("Should honor a version constraint", func(t *testing.T) {
		reg := newRegistry(t, validTarball(t))
		gate, _ := newTestGate(t, reg.server.URL, Options{Version: "^1.0.0"})

		res, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1.5.0", res.Version)
	})

	t.Run("Should retry transient registry failures", func(t *testing.T) {
		reg := newRegistry(t, validTarball(t))
		reg.failFirst.Store(2)
		gate, _ := newTestGate(t, reg.server.URL, Options{MaxRetries: 3})

		_, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(3), reg.metadataCalls.Load())
	})

	t.Run("Should not retry missing packages", func(t *testing.T) {
		reg := newRegistry(t, validTarball(t))
		gate, cacheDir := newTestGate(t, reg.server.URL, Options{Package: "missing-pkg", MaxRetries: 3})

		_, err := gate.Acquire(context.Background())
		require.Error(t, err)
		assert.True(t, core.HasCode(err, core.CodeAcquireFailed))
		assert.Equal(t, int32(1), reg.metadataCalls.Load())
		exists, _ := afero.DirExists(afero.NewOsFs(), cacheDir)
		assert.False(t, exists)
	})

	t.Run("Should leave no cache behind when the download is not an archive", func(t *testing.T) {
		reg := newRegistry(t, []byte("<html>oops</html>"))
		gate, cacheDir := newTestGate(t, reg.server.URL, Options{})

		_, err := gate.Acquire(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotGzip)
		exists, _ := afero.DirExists(afero.NewOsFs(), cacheDir)
		assert.False(t, exists)
	})
}

func TestExtract(t *testing.T) {
	t.Run("Should reject entries escaping the destination", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		archive := buildTarball(t, tarEntry{name: "../evil.txt", body: "x"})

		err := Extract(fs, archive, "dest")
		require.Error(t, err)
		assert.True(t, core.HasCode(err, core.CodePathEscape))
	})

	t.Run("Should create parent directories for files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		archive := buildTarball(t, tarEntry{name: "package/json/a.json", body: "{}"})

		require.NoError(t, Extract(fs, archive, "dest"))
		data, err := afero.ReadFile(fs, filepath.Join("dest", "package", "json", "a.json"))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})
}

func TestResolveRelease(t *testing.T) {
	meta := []byte(`{
		"dist-tags": {"latest": "3.0.0"},
		"versions": {
			"2.1.0": {"dist": {"tarball": "https://r/2.1.0.tgz"}},
			"3.0.0": {"dist": {"tarball": "https://r/3.0.0.tgz"}},
			"3.1.0-beta.1": {"dist": {"tarball": "https://r/3.1.0-beta.1.tgz"}}
		}
	}`)

	t.Run("Should use the latest dist-tag without a constraint", func(t *testing.T) {
		rel, err := ResolveRelease(meta, "")
		require.NoError(t, err)
		assert.Equal(t, &Release{Version: "3.0.0", Tarball: "https://r/3.0.0.tgz"}, rel)
	})

	t.Run("Should pick the highest matching version", func(t *testing.T) {
		rel, err := ResolveRelease(meta, "~2")
		require.NoError(t, err)
		assert.Equal(t, "2.1.0", rel.Version)
	})

	t.Run("Should report unsatisfiable constraints", func(t *testing.T) {
		_, err := ResolveRelease(meta, ">=9")
		assert.ErrorIs(t, err, ErrNoMatchingVersion)
	})

	t.Run("Should reject invalid constraints", func(t *testing.T) {
		_, err := ResolveRelease(meta, "not a version")
		assert.Error(t, err)
	})
}
