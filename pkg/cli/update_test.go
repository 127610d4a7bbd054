package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/stretchr/testify/require"
)

func serveReleases(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/Fepozopo/normalmap/releases" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	old := githubAPI
	githubAPI = srv.URL
	t.Cleanup(func() { githubAPI = old })
}

func TestDetectLatestFallbackPicksHighest(t *testing.T) {
	serveReleases(t, http.StatusOK, `[
		{"tag_name": "v1.2.0", "assets": [{"name": "normalmap_linux_amd64.tar.gz", "browser_download_url": "https://example.com/1.2.0"}]},
		{"tag_name": "v2.0.0-rc1", "prerelease": true},
		{"tag_name": "release-1.10.1", "assets": [{"name": "notes.txt", "browser_download_url": "https://example.com/notes"}, {"name": "normalmap_darwin_arm64.tar.gz", "browser_download_url": "https://example.com/1.10.1"}]},
		{"tag_name": "nightly", "name": "nightly build"},
		{"tag_name": "v9.9.9", "draft": true}
	]`)

	rel, found, err := detectLatestFallback(context.Background(), updateRepo)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1.10.1", rel.Version.String())
	require.Equal(t, "https://example.com/1.10.1", rel.AssetURL)
}

func TestDetectLatestFallbackNone(t *testing.T) {
	serveReleases(t, http.StatusOK, `[{"tag_name": "nightly"}]`)
	rel, found, err := detectLatestFallback(context.Background(), updateRepo)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, rel)
}

func TestDetectLatestFallbackHTTPError(t *testing.T) {
	serveReleases(t, http.StatusForbidden, `{"message": "rate limited"}`)
	_, _, err := detectLatestFallback(context.Background(), updateRepo)
	require.ErrorContains(t, err, "status 403")
}

func TestDecideUpdate(t *testing.T) {
	rel := func(v, url string) *selfupdate.Release {
		return &selfupdate.Release{Version: semver.MustParse(v), AssetURL: url}
	}
	require.Equal(t, updateNone, decideUpdate("1.0.0", nil))
	require.Equal(t, updateCurrent, decideUpdate("v1.2.0", rel("1.2.0", "u")))
	require.Equal(t, updateCurrent, decideUpdate("1.3.0", rel("1.2.0", "u")))
	require.Equal(t, updateNoAsset, decideUpdate("1.0.0", rel("1.2.0", "")))
	require.Equal(t, updateAvailable, decideUpdate("1.0.0", rel("1.2.0", "u")))
	require.Equal(t, updateAvailable, decideUpdate("dev", rel("1.2.0", "u")))
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"y", "Y", " yes ", "YES"} {
		require.True(t, isYes(s), s)
	}
	for _, s := range []string{"", "n", "no", "yep"} {
		require.False(t, isYes(s), s)
	}
}
