package version

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatedBy(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	assert.Equal(t, "mktorrent v1.2.3", CreatedBy())
	Version = "dev"
	assert.Equal(t, "mktorrent vdev", CreatedBy())
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.4", "1.2.3", true},
		{"2.0.0", "1.9.9", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.3", "1.3.0", false},
		{"1.2.3-beta", "1.2.2", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isNewerVersion(tt.latest, tt.current), "%s vs %s", tt.latest, tt.current)
	}
}

func TestCheckForUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mktorrent-update-checker", r.Header.Get("User-Agent"))
		_, _ = fmt.Fprint(w, `{"tag_name":"v1.5.0","html_url":"https://example/releases/v1.5.0"}`)
	}))
	defer srv.Close()

	info, err := CheckForUpdate(context.Background(), "1.4.9", srv.URL)
	require.NoError(t, err)
	assert.True(t, info.UpdateAvailable)
	assert.Equal(t, "v1.5.0", info.LatestVersion)
	assert.Equal(t, "https://example/releases/v1.5.0", info.ReleaseURL)

	info, err = CheckForUpdate(context.Background(), "v1.5.0", srv.URL)
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)
}

func TestCheckForUpdate_DevAndErrors(t *testing.T) {
	info, err := CheckForUpdate(context.Background(), "dev", "http://unused")
	assert.NoError(t, err)
	assert.Nil(t, info)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err = CheckForUpdate(context.Background(), "1.0.0", srv.URL)
	assert.Error(t, err)
}
