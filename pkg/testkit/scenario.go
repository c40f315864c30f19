// Package testkit drives an http.Handler in-process for API tests.
//
// Tests either script requests in Go with a Client, or describe a flow as
// a JSON scenario file whose steps run in order against one Client, so the
// session cookie set by one step is sent by the next:
//
//	{
//	  "name": "register then order",
//	  "steps": [
//	    {"name": "register", "method": "POST", "url": "/auth/register",
//	     "body": {"name": "A", "email": "a@x.com", "password": "secret1"},
//	     "expectedCode": 201},
//	    {"name": "order", "method": "POST", "url": "/payment",
//	     "body": {"amount": 10, "item": "book"},
//	     "expectedCode": 201,
//	     "expectedBody": {"order": {"status": "PENDING"}},
//	     "capture": {"orderId": "order.id"}},
//	    {"name": "fetch", "method": "GET", "url": "/payment/{{orderId}}",
//	     "expectedCode": 200}
//	  ]
//	}
//
// expectedBody is a subset match: every key it names must be present with
// an equal value, other keys are ignored. capture stores a dotted path from
// the response body for {{name}} substitution in later URLs and bodies.
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario is an ordered list of requests sharing one cookie jar.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// Step is one request and what its reply must look like.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"`
	// ExpectCookie names a cookie the reply must set.
	ExpectCookie string `json:"expectCookie"`

	Capture map[string]string `json:"capture"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

// LoadAllFromDir loads every *.json file in dir.
func LoadAllFromDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}

	var (
		out  []*Scenario
		errs []error
	)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if st.Method == "" {
			st.Method = "GET"
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("step_%d", i+1)
		}
	}
	return nil
}
