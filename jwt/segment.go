package jwt

import (
	"encoding/base64"
	"strings"

	"github.com/cockroachdb/errors"
)

// segmentEncoding is base64url without padding.
// Strict mode rejects non-zero trailing bits, so every segment
// has exactly one valid textual form.
var segmentEncoding = base64.RawURLEncoding.Strict()

// EncodeSegment returns JWT specific base64url encoding with padding stripped
func EncodeSegment(seg []byte) string {
	return segmentEncoding.EncodeToString(seg)
}

// DecodeSegment decodes JWT specific base64url encoding with padding stripped.
// The standard decoder silently skips CR and LF, these are rejected here
// together with padding and any other character outside of the URL alphabet.
func DecodeSegment(seg string) ([]byte, error) {
	if i := strings.IndexAny(seg, "\r\n="); i >= 0 {
		return nil, kindf(ErrMalformedBase64, "illegal character at input byte %d", i)
	}
	b, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return nil, errors.Mark(errors.WithStack(err), ErrMalformedBase64)
	}
	return b, nil
}
