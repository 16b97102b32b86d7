package jwt

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
)

// Registered header parameter names
const (
	HeaderAlgorithm   = "alg"
	HeaderType        = "typ"
	HeaderContentType = "cty"
	HeaderKeyID       = "kid"
)

// DefaultTokenType is the "typ" value set by Encode
const DefaultTokenType = "JWT"

var registeredHeaders = []string{HeaderAlgorithm, HeaderType, HeaderContentType, HeaderKeyID}

// Header is the JOSE header of a token
type Header struct {
	// Algorithm is the signing algorithm, required
	Algorithm Algorithm
	// Type is the media type of the token, usually "JWT"
	Type string
	// ContentType is set for nested tokens
	ContentType string
	// KeyID is a hint of the key used to sign the token
	KeyID string
	// Extra holds non-registered header parameters.
	// Registered names in this map are ignored.
	Extra map[string]any
}

// NewHeader returns header for the algorithm with "typ":"JWT"
func NewHeader(alg Algorithm) Header {
	return Header{
		Algorithm: alg,
		Type:      DefaultTokenType,
	}
}

// Clone returns a copy of the header
func (h Header) Clone() Header {
	if h.Extra != nil {
		h.Extra = cloneMap(h.Extra)
	}
	return h
}

// Get returns header parameter by name
func (h Header) Get(name string) any {
	switch name {
	case HeaderAlgorithm:
		return h.Algorithm.String()
	case HeaderType:
		return h.Type
	case HeaderContentType:
		return h.ContentType
	case HeaderKeyID:
		return h.KeyID
	}
	return h.Extra[name]
}

// MarshalJSON writes registered parameters first in the fixed order
// alg, typ, cty, kid, followed by Extra sorted by name.
// Empty optional parameters are omitted.
func (h Header) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(name string, value any) error {
		k, err := marshalJSON(name)
		if err != nil {
			return err
		}
		v, err := marshalJSON(value)
		if err != nil {
			return errors.WithMessagef(err, "unable to encode %q", name)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := write(HeaderAlgorithm, h.Algorithm.String()); err != nil {
		return nil, err
	}
	for _, opt := range []struct{ name, value string }{
		{HeaderType, h.Type},
		{HeaderContentType, h.ContentType},
		{HeaderKeyID, h.KeyID},
	} {
		if opt.value == "" {
			continue
		}
		if err := write(opt.name, opt.value); err != nil {
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(h.Extra)) {
		if slices.Contains(registeredHeaders, name) {
			continue
		}
		if err := write(name, h.Extra[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the header,
// "alg" must be present and be a non-empty string.
func (h *Header) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.WithStack(err)
	}
	if fields == nil {
		return errors.Errorf("header must be a JSON object")
	}

	raw, ok := fields[HeaderAlgorithm]
	if !ok {
		return errors.Errorf("missing alg")
	}
	var alg string
	if err := json.Unmarshal(raw, &alg); err != nil {
		return errors.Errorf("alg must be a string")
	}
	if alg == "" {
		return errors.Errorf("empty alg")
	}

	decoded := Header{
		Algorithm: Algorithm(alg),
	}
	for _, opt := range []struct {
		name string
		dest *string
	}{
		{HeaderType, &decoded.Type},
		{HeaderContentType, &decoded.ContentType},
		{HeaderKeyID, &decoded.KeyID},
	} {
		raw, ok := fields[opt.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, opt.dest); err != nil {
			return errors.Errorf("%s must be a string", opt.name)
		}
	}

	for name, raw := range fields {
		if slices.Contains(registeredHeaders, name) {
			continue
		}
		var v any
		if err := unmarshalJSON(raw, &v, true); err != nil {
			return errors.WithMessagef(err, "unable to decode %q", name)
		}
		if decoded.Extra == nil {
			decoded.Extra = map[string]any{}
		}
		decoded.Extra[name] = v
	}

	*h = decoded
	return nil
}
