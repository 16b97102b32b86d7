package jwt

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// MarshalHeader returns JSON encoded header.
// The output is stable for the same header value.
func MarshalHeader(h *Header) ([]byte, error) {
	if h == nil {
		return nil, kindf(ErrInvalidHeaderJSON, "nil header")
	}
	raw, err := h.MarshalJSON()
	if err != nil {
		return nil, wrapf(err, ErrInvalidHeaderJSON, "unable to encode header")
	}
	return raw, nil
}

// MarshalClaims returns JSON encoded claims with sorted keys.
// Nil claims are encoded as an empty object.
func MarshalClaims(c Claims) ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	raw, err := marshalJSON(map[string]any(c))
	if err != nil {
		return nil, wrapf(err, ErrInvalidClaimsJSON, "unable to encode claims")
	}
	return raw, nil
}

// UnmarshalHeader decodes JOSE header
func UnmarshalHeader(raw []byte) (*Header, error) {
	h := new(Header)
	if err := json.Unmarshal(raw, h); err != nil {
		return nil, wrapf(err, ErrInvalidHeaderJSON, "unable to decode header")
	}
	return h, nil
}

// UnmarshalClaims decodes claims, any JSON object is accepted.
// With useNumber, numbers are decoded as json.Number instead of float64.
func UnmarshalClaims(raw []byte, useNumber bool) (Claims, error) {
	var m map[string]any
	if err := unmarshalJSON(raw, &m, useNumber); err != nil {
		return nil, wrapf(err, ErrInvalidClaimsJSON, "unable to decode claims")
	}
	if m == nil {
		return nil, kindf(ErrInvalidClaimsJSON, "claims must be a JSON object")
	}
	return Claims(m), nil
}

// marshalJSON encodes without HTML escaping and without the trailing new line
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// unmarshalJSON decodes a single JSON value, trailing data is an error
func unmarshalJSON(raw []byte, v any, useNumber bool) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return errors.WithStack(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.Errorf("unexpected data after JSON value")
	}
	return nil
}
