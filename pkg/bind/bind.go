// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/validate"
)

// FormKey is the error key used when the body as a whole is unusable.
const FormKey = "form"

// EmptyBodyMessage is reported under FormKey for an absent or empty body.
const EmptyBodyMessage = "Request body is missing or empty"

// JSON decodes r.Body as JSON into dest and runs validation.
//
// An absent body, a whitespace-only body, or "{}" yields
// {"form": EmptyBodyMessage}. A wrongly typed field is reported under its
// own name next to every other validation failure. Fields not declared on
// dest are dropped.
//
// Returns (errs, nil) when there are field failures and (nil, err) when the
// body is malformed JSON, not an object, or larger than MAX_BODY_BYTES.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if r.Body == nil {
		return map[string]string{FormKey: EmptyBodyMessage}, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]string{FormKey: EmptyBodyMessage}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errors.New("invalid JSON: request body must be an object")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(top) == 0 {
		return map[string]string{FormKey: EmptyBodyMessage}, nil
	}

	errs = make(map[string]string)
	if err := json.Unmarshal(raw, dest); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		field := typeErr.Field
		if field == "" {
			field = FormKey
		}
		errs[field] = fmt.Sprintf("The %s must be of type %s.", field, typeErr.Type.String())
	}

	errs = validate.Merge(errs, validate.Struct(dest))
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}
