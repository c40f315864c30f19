package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertStatusCode checks the reply status and dumps the body on mismatch.
func AssertStatusCode(t *testing.T, label string, want int, res *Response) bool {
	t.Helper()
	return assert.Equal(t, want, res.Code, "[%s] status code mismatch\nbody: %s", label, res.Body)
}

// AssertJSONSubset checks that every key in expected appears in actual with
// an equal value. Objects are compared recursively; arrays and scalars must
// match exactly.
func AssertJSONSubset(t *testing.T, label string, expected, actual []byte) bool {
	t.Helper()

	var want, got any
	if !assert.NoError(t, json.Unmarshal(expected, &want), "[%s] expected body is not valid JSON", label) {
		return false
	}
	if !assert.NoError(t, json.Unmarshal(actual, &got), "[%s] response is not valid JSON\nbody: %s", label, actual) {
		return false
	}
	return assert.True(t, subset(want, got), "[%s] response does not contain expected body\nwant: %s\ngot:  %s", label, expected, actual)
}

func subset(want, got any) bool {
	wm, ok := want.(map[string]any)
	if !ok {
		return assert.ObjectsAreEqual(want, got)
	}
	gm, ok := got.(map[string]any)
	if !ok {
		return false
	}
	for k, wv := range wm {
		gv, ok := gm[k]
		if !ok || !subset(wv, gv) {
			return false
		}
	}
	return true
}
