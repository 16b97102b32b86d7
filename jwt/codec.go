package jwt

import (
	"maps"
	"slices"
	"time"

	"github.com/effective-security/xjwt/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjwt", "jwt")

// Codec encodes and decodes compact tokens.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	allowedAlgorithms []Algorithm
	allowNone         bool
	useJSONNumber     bool
	maxTokenSize      int
	tokenType         string
	headers           map[string]any
}

// Option configures Codec
type Option func(*Codec)

// WithAllowedAlgorithms restricts the algorithms accepted for signing and parsing
func WithAllowedAlgorithms(algs ...Algorithm) Option {
	return func(c *Codec) {
		c.allowedAlgorithms = slices.Clone(algs)
	}
}

// WithUnsecuredNone enables the unsecured "none" algorithm.
// Tokens with "alg":"none" have an empty signature and carry no authenticity,
// they are rejected as unsupported unless this option is used.
func WithUnsecuredNone() Option {
	return func(c *Codec) {
		c.allowNone = true
	}
}

// WithJSONNumber specifies if numbers in claims are decoded as json.Number,
// which is the default, or float64.
func WithJSONNumber(use bool) Option {
	return func(c *Codec) {
		c.useJSONNumber = use
	}
}

// WithMaxTokenSize rejects tokens longer than size bytes.
// Zero means no limit.
func WithMaxTokenSize(size int) Option {
	return func(c *Codec) {
		c.maxTokenSize = size
	}
}

// WithTokenType specifies "typ" header set by Encode,
// empty value omits the header.
func WithTokenType(typ string) Option {
	return func(c *Codec) {
		c.tokenType = typ
	}
}

// WithHeaders specifies additional headers set by Encode
func WithHeaders(headers map[string]any) Option {
	return func(c *Codec) {
		c.headers = maps.Clone(headers)
	}
}

var defaultCodec = New()

// New returns Codec
func New(opts ...Option) *Codec {
	c := &Codec{
		useJSONNumber: true,
		tokenType:     DefaultTokenType,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode returns signed compact token for the claims
func Encode(claims Claims, secret []byte, alg Algorithm) (string, error) {
	return defaultCodec.Encode(claims, secret, alg)
}

// Assemble returns signed token for the header and claims
func Assemble(header Header, claims Claims, secret []byte) (*Encoded, error) {
	return defaultCodec.Assemble(header, claims, secret)
}

// Encode returns signed compact token for the claims,
// with the header built from alg and the Codec options.
func (c *Codec) Encode(claims Claims, secret []byte, alg Algorithm) (string, error) {
	h := Header{
		Algorithm: alg,
		Type:      c.tokenType,
	}
	for k, v := range c.headers {
		switch k {
		case HeaderKeyID, HeaderContentType, HeaderType:
			s, ok := v.(string)
			if !ok {
				return "", kindf(ErrInvalidHeaderJSON, "%s must be a string", k)
			}
			switch k {
			case HeaderKeyID:
				h.KeyID = s
			case HeaderContentType:
				h.ContentType = s
			default:
				h.Type = s
			}
		case HeaderAlgorithm:
		default:
			if h.Extra == nil {
				h.Extra = map[string]any{}
			}
			h.Extra[k] = v
		}
	}

	t, err := c.Assemble(h, claims, secret)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// Sign returns signed token
func (c *Codec) Sign(t *Decoded, secret []byte) (*Encoded, error) {
	return c.Assemble(t.Header, t.Claims, secret)
}

// Assemble returns signed token for the header and claims.
// The header and claims are serialized once, the same bytes
// are signed and returned in the token.
func (c *Codec) Assemble(header Header, claims Claims, secret []byte) (*Encoded, error) {
	method, err := c.signingMethod(header.Algorithm)
	if err != nil {
		return nil, err
	}
	defer metricskey.PerfJWTOperation.MeasureSince(time.Now(), header.Algorithm.String(), "sign")

	header = header.Clone()
	claims = claims.Clone()

	headerJSON, err := MarshalHeader(&header)
	if err != nil {
		return nil, err
	}
	claimsJSON, err := MarshalClaims(claims)
	if err != nil {
		return nil, err
	}

	segments := Segments{
		Header:  EncodeSegment(headerJSON),
		Payload: EncodeSegment(claimsJSON),
	}
	sig, err := method.Sign([]byte(segments.SigningInput()), secret)
	if err != nil {
		return nil, err
	}
	segments.Signature = EncodeSegment(sig)

	if claims == nil {
		claims = Claims{}
	}
	return &Encoded{
		segments:   segments,
		header:     header,
		claims:     claims,
		headerJSON: headerJSON,
		claimsJSON: claimsJSON,
	}, nil
}

// Split returns the segments of the compact token
func (c *Codec) Split(raw string) (Segments, error) {
	if c.maxTokenSize > 0 && len(raw) > c.maxTokenSize {
		return Segments{}, kindf(ErrMalformedToken, "token exceeds maximum size of %d bytes", c.maxTokenSize)
	}
	return split(raw, c.allowNone)
}

// signingMethod returns the method for alg,
// if alg is allowed by the Codec.
func (c *Codec) signingMethod(alg Algorithm) (SigningMethod, error) {
	if alg == "" {
		return nil, kindf(ErrUnsupportedAlgorithm, "missing alg")
	}
	if len(c.allowedAlgorithms) > 0 && !slices.Contains(c.allowedAlgorithms, alg) {
		return nil, kindf(ErrUnsupportedAlgorithm, "%q is not allowed", alg)
	}
	if alg == None {
		if !c.allowNone {
			return nil, kindf(ErrUnsupportedAlgorithm, "unsecured tokens are not enabled")
		}
		return unsecuredMethod{}, nil
	}
	return GetSigningMethod(alg)
}
