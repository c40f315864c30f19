package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionHandler sets a cookie on /login and echoes it back on /me.
func sessionHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":7,"name":"ann"}}`))
	})
	mux.HandleFunc("/me/7", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"no token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": c.Value, "extra": true})
	})
	return mux
}

func TestClientKeepsCookies(t *testing.T) {
	c := NewClient(t, sessionHandler(t))

	assert.Equal(t, http.StatusUnauthorized, c.Get("/me/7").Code)

	res := c.Post("/login", map[string]string{"a": "b"})
	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, res.Cookie("token"))

	me := c.Get("/me/7")
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "abc", me.JSON(t)["token"])

	c.ClearCookies()
	assert.Equal(t, http.StatusUnauthorized, c.Get("/me/7").Code)
}

func TestRunDirWithCapture(t *testing.T) {
	dir := t.TempDir()
	scenario := `{
	  "name": "login flow",
	  "steps": [
	    {"name": "login", "method": "POST", "url": "/login", "body": {},
	     "expectedCode": 200, "expectCookie": "token",
	     "expectedBody": {"user": {"name": "ann"}},
	     "capture": {"uid": "user.id"}},
	    {"name": "me", "url": "/me/{{uid}}", "expectedCode": 200,
	     "expectedBody": {"token": "abc"}}
	  ]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flow.json"), []byte(scenario), 0o644))

	RunDir(t, sessionHandler, dir)
}

func TestLoadScenarioValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","steps":[{"url":"/"}]}`), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "expectedCode is required")
}

func TestSubsetAndLookup(t *testing.T) {
	assert.True(t, subset(
		map[string]any{"a": map[string]any{"b": 1.0}},
		map[string]any{"a": map[string]any{"b": 1.0, "c": 2.0}, "d": 3.0},
	))
	assert.False(t, subset(map[string]any{"a": 1.0}, map[string]any{"a": 2.0}))

	v, ok := lookup([]byte(`{"orders":[{"id":3}]}`), "orders.0.id")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = lookup([]byte(`{"orders":[]}`), "orders.0.id")
	assert.False(t, ok)
}
