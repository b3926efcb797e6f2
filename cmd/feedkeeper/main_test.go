package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: configPath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_BadDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{DB: "file:" + filepath.Join(t.TempDir(), "no-such-dir", "x.db") + "?mode=rw"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open database")
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestRun_ServerStartStop(t *testing.T) {
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Blog X</title>
			<link>https://x.example.com</link>
			<item><guid>c</guid><title>Newest</title><pubDate>Wed, 03 Jan 2024 10:00:00 +0000</pubDate></item>
			<item><guid>b</guid><title>Middle</title><pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate></item>
			<item><guid>a</guid><title>Oldest</title><pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate></item>
			</channel></rss>`))
	}))
	defer feedSrv.Close()

	tmpDir := t.TempDir()
	t.Setenv("FEEDKEEPER_TEST_DB", filepath.Join(tmpDir, "feedkeeper.db"))
	port := freePort(t)
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := fmt.Sprintf(`
server:
  listen: "127.0.0.1:%d"
  timeout: 5s
database:
  dsn: "file:${FEEDKEEPER_TEST_DB}?mode=rwc"
schedule:
  update_interval: 1h
fetcher:
  timeout: 2s
`, port)
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverErr := make(chan error, 1)
	go func() { serverErr <- run(ctx, Opts{Config: configPath}) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 5*time.Second, 50*time.Millisecond)

	send := func(method, path, body string, auth bool) *http.Response {
		req, err := http.NewRequest(method, base+path, bytes.NewBufferString(body))
		require.NoError(t, err)
		if auth {
			req.SetBasicAuth("alice", "secret")
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := send("POST", "/api/v1/users", `{"username":"alice","password":"secret"}`, false)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send("POST", "/api/v1/feeds", fmt.Sprintf(`{"url":%q}`, feedSrv.URL), true)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send("GET", "/api/v1/feeds", "", true)
	var feeds struct {
		Feeds []struct {
			Title  string `json:"title"`
			Unread int    `json:"unread"`
		} `json:"feeds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feeds))
	resp.Body.Close()
	require.Len(t, feeds.Feeds, 1)
	assert.Equal(t, "Blog X", feeds.Feeds[0].Title)
	assert.Equal(t, 3, feeds.Feeds[0].Unread)

	resp = send("GET", "/api/v1/feeds/1/rss", "", true)
	rss, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newest := strings.Index(string(rss), "<title>Newest</title>")
	middle := strings.Index(string(rss), "<title>Middle</title>")
	oldest := strings.Index(string(rss), "<title>Oldest</title>")
	require.True(t, newest > 0 && middle > 0 && oldest > 0, string(rss))
	assert.Less(t, newest, middle)
	assert.Less(t, middle, oldest)

	req, err := http.NewRequest("GET", base+"/api/v1/feeds", http.NoBody)
	require.NoError(t, err)
	req.SetBasicAuth("alice", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-serverErr:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server shutdown timeout")
	}
}

func TestSetupLog(t *testing.T) {
	// setupLog replaces global loggers, only verify it doesn't panic in each mode
	assert.NotPanics(t, func() { setupLog(true, false) })
	assert.NotPanics(t, func() { setupLog(false, false) })
	assert.NotPanics(t, func() { setupLog(true, true, "secret1", "secret2") })
	assert.NotPanics(t, func() { setupLog(false, true) })
}
