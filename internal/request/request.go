// Package request decodes JSON request bodies strictly.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	ErrEmptyBody  = errors.New("request body is empty")
	ErrNotInteger = errors.New("value must be a JSON integer")
)

// DecodeStrict decodes one JSON object into v, rejecting unknown fields and trailing data.
func DecodeStrict(body io.Reader, v any) error {
	if body == nil {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// Int parses raw as a JSON integer that fits in an int32. Strings, floats,
// exponents and null are rejected.
func Int(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, ErrNotInteger
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotInteger, err)
	}

	n, ok := v.(json.Number)
	if !ok {
		return 0, ErrNotInteger
	}
	i, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, fmt.Errorf("%w: out of range", ErrNotInteger)
	}
	return int(i), nil
}

// Quantity reads {"quantity": n} and returns n. Positivity is left to the caller.
func Quantity(body io.Reader) (int, error) {
	var req struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if body == nil {
		return 0, ErrEmptyBody
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return 0, err
	}
	return Int(req.Quantity)
}
