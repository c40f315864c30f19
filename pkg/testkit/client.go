package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client fires requests at an http.Handler in-process and keeps cookies
// between calls the way a browser would.
type Client struct {
	t       testing.TB
	handler http.Handler
	jar     *cookiejar.Jar
	base    *url.URL
}

// NewClient returns a Client over handler.
func NewClient(t testing.TB, handler http.Handler) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, _ := url.Parse("http://example.com")
	return &Client{t: t, handler: handler, jar: jar, base: base}
}

// Response is a recorded reply.
type Response struct {
	Code   int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into a generic map.
func (r *Response) JSON(t testing.TB) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &out), "body: %s", r.Body)
	return out
}

// Cookie returns the named Set-Cookie from this response, or nil.
func (r *Response) Cookie(name string) *http.Cookie {
	for _, c := range (&http.Response{Header: r.Header}).Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Do sends method path with body. A nil body sends none; a []byte or
// string is sent verbatim; anything else is JSON-encoded.
func (c *Client) Do(method, path string, body any) *Response {
	c.t.Helper()
	return c.DoWithHeaders(method, path, body, nil)
}

// DoWithHeaders is Do with extra request headers.
func (c *Client) DoWithHeaders(method, path string, body any, headers map[string]string) *Response {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	req := httptest.NewRequest(method, u.String(), reader)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, ck := range c.jar.Cookies(u) {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	res := rec.Result()
	c.jar.SetCookies(u, res.Cookies())

	return &Response{Code: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()}
}

// ClearCookies drops every stored cookie.
func (c *Client) ClearCookies() {
	jar, _ := cookiejar.New(nil)
	c.jar = jar
}

func (c *Client) Get(path string) *Response { c.t.Helper(); return c.Do(http.MethodGet, path, nil) }
func (c *Client) Post(path string, body any) *Response { c.t.Helper(); return c.Do(http.MethodPost, path, body) }
func (c *Client) Put(path string, body any) *Response { c.t.Helper(); return c.Do(http.MethodPut, path, body) }
func (c *Client) Patch(path string, body any) *Response { c.t.Helper(); return c.Do(http.MethodPatch, path, body) }
func (c *Client) Delete(path string) *Response { c.t.Helper(); return c.Do(http.MethodDelete, path, nil) }
