package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Run executes the scenario at path against a fresh handler from newHandler.
func Run(t *testing.T, newHandler func(t *testing.T) http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, NewClient(t, newHandler(t)), s)
	})
}

// RunDir runs every scenario in dir, each against its own handler so state
// never leaks between files.
func RunDir(t *testing.T, newHandler func(t *testing.T) http.Handler, dir string) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}
	for _, p := range paths {
		Run(t, newHandler, p)
	}
}

func runScenario(t *testing.T, c *Client, s *Scenario) {
	vars := map[string]string{}

	for _, st := range s.Steps {
		var body any
		if len(st.Body) > 0 {
			body = []byte(expand(string(st.Body), vars))
		}

		res := c.DoWithHeaders(strings.ToUpper(st.Method), expand(st.URL, vars), body, st.Headers)
		label := fmt.Sprintf("%s/%s", s.Name, st.Name)

		if !AssertStatusCode(t, label, st.ExpectedCode, res) {
			return
		}
		if len(st.ExpectedBody) > 0 {
			AssertJSONSubset(t, label, []byte(expand(string(st.ExpectedBody), vars)), res.Body)
		}
		if st.ExpectCookie != "" && res.Cookie(st.ExpectCookie) == nil {
			t.Errorf("[%s] expected cookie %q to be set", label, st.ExpectCookie)
		}

		for name, path := range st.Capture {
			v, ok := lookup(res.Body, path)
			if !ok {
				t.Fatalf("[%s] capture %q: path %q not in body %s", label, name, path, res.Body)
			}
			vars[name] = v
		}
	}
}

func expand(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// lookup walks a dotted path ("order.id", "orders.0.id") through a JSON
// document and renders the leaf as text.
func lookup(body []byte, path string) (string, bool) {
	var cur any
	if err := json.Unmarshal(body, &cur); err != nil {
		return "", false
	}
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return "", false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return "", false
			}
			cur = node[i]
		default:
			return "", false
		}
	}

	switch v := cur.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "null", true
	default:
		data, _ := json.Marshal(v)
		return string(data), true
	}
}
