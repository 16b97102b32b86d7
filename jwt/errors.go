package jwt

import (
	"github.com/cockroachdb/errors"
)

// Error classes returned by the codec.
// Use errors.Is to classify a failure; the returned errors carry
// additional context but always wrap or mark one of these values.
var (
	// ErrMalformedBase64 is returned when a segment is not valid unpadded base64url
	ErrMalformedBase64 = errors.New("malformed base64url")
	// ErrMalformedToken is returned when the token is not made of three dot-separated segments
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidHeaderJSON is returned when the header segment is not a valid JOSE header
	ErrInvalidHeaderJSON = errors.New("invalid header JSON")
	// ErrInvalidClaimsJSON is returned when the payload segment is not a JSON object
	ErrInvalidClaimsJSON = errors.New("invalid claims JSON")
	// ErrUnsupportedAlgorithm is returned when the algorithm is unknown or not allowed
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrVerificationFailed is returned when a well-formed token has a signature that does not match
	ErrVerificationFailed = errors.New("signature verification failed")
	// ErrMissingSecret is returned when signing or verification is requested without a secret
	ErrMissingSecret = errors.New("signing secret not provided")
	// ErrInvalidClaims is returned when verified claims do not satisfy the VerifyConfig
	ErrInvalidClaims = errors.New("invalid claims")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrMalformedBase64, "MalformedBase64"},
	{ErrMalformedToken, "MalformedToken"},
	{ErrInvalidHeaderJSON, "InvalidHeaderJson"},
	{ErrInvalidClaimsJSON, "InvalidClaimsJson"},
	{ErrUnsupportedAlgorithm, "UnsupportedAlgorithm"},
	{ErrVerificationFailed, "VerificationFailed"},
	{ErrMissingSecret, "MissingSecret"},
	{ErrInvalidClaims, "InvalidClaims"},
}

// ErrorKind returns the name of the error class of err,
// or empty string if err is nil or was not produced by this package.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// kindf returns kind annotated with the formatted message
func kindf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// wrapf annotates cause with the formatted message,
// and classifies the result as kind.
func wrapf(cause, kind error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), kind)
}
