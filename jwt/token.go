package jwt

import "strings"

// Segments are the base64url encoded parts of the compact serialization
type Segments struct {
	Header    string
	Payload   string
	Signature string
}

// SigningInput returns the header and payload segments joined with "."
func (s Segments) SigningInput() string {
	return s.Header + "." + s.Payload
}

// String returns the compact serialization
func (s Segments) String() string {
	return s.SigningInput() + "." + s.Signature
}

// Split returns the segments of the compact token.
// The token must have exactly three segments, the header and payload
// segments must not be empty. The signature segment must not be empty,
// unless the Codec allows unsecured tokens.
func Split(raw string) (Segments, error) {
	return defaultCodec.Split(raw)
}

func split(raw string, allowEmptySignature bool) (Segments, error) {
	if n := strings.Count(raw, "."); n != 2 {
		return Segments{}, kindf(ErrMalformedToken, "expected 3 segments, found %d", n+1)
	}
	parts := strings.SplitN(raw, ".", 3)
	s := Segments{
		Header:    parts[0],
		Payload:   parts[1],
		Signature: parts[2],
	}
	if s.Header == "" {
		return Segments{}, kindf(ErrMalformedToken, "empty header segment")
	}
	if s.Payload == "" {
		return Segments{}, kindf(ErrMalformedToken, "empty payload segment")
	}
	if s.Signature == "" && !allowEmptySignature {
		return Segments{}, kindf(ErrMalformedToken, "empty signature segment")
	}
	return s, nil
}

// Decoded is a token before signing.
// Use Codec.Sign to produce Encoded token.
type Decoded struct {
	Header Header
	Claims Claims
}

// NewDecoded returns token to be signed
func NewDecoded(header Header, claims Claims) *Decoded {
	return &Decoded{
		Header: header,
		Claims: claims,
	}
}

// Encoded is a signed token.
// It holds the exact bytes that were signed and can not be modified,
// any change requires a new signature.
type Encoded struct {
	segments Segments
	header   Header
	claims   Claims
	// raw JSON of the header and claims, as signed
	headerJSON []byte
	claimsJSON []byte
}

// String returns the compact serialization
func (t *Encoded) String() string {
	return t.segments.String()
}

// Segments returns the encoded segments
func (t *Encoded) Segments() Segments {
	return t.segments
}

// Header returns a copy of the signed header
func (t *Encoded) Header() Header {
	return t.header.Clone()
}

// Claims returns a copy of the signed claims
func (t *Encoded) Claims() Claims {
	return t.claims.Clone()
}

// HeaderJSON returns a copy of the JSON encoded header, as signed
func (t *Encoded) HeaderJSON() []byte {
	return append([]byte(nil), t.headerJSON...)
}

// ClaimsJSON returns a copy of the JSON encoded claims, as signed
func (t *Encoded) ClaimsJSON() []byte {
	return append([]byte(nil), t.claimsJSON...)
}

// ParsedToken is a token with decoded header and claims,
// and the signature not yet checked.
// The claims are available only through UnverifiedClaims.
type ParsedToken struct {
	codec     *Codec
	raw       string
	segments  Segments
	header    Header
	claims    Claims
	signature []byte
	method    SigningMethod
}

// Raw returns the compact serialization
func (t *ParsedToken) Raw() string {
	return t.raw
}

// Segments returns the encoded segments
func (t *ParsedToken) Segments() Segments {
	return t.segments
}

// Header returns a copy of the header
func (t *ParsedToken) Header() Header {
	return t.header.Clone()
}

// UnverifiedClaims returns a copy of the claims,
// which are NOT authenticated.
// WARNING: Don't use the claims for any access decision.
func (t *ParsedToken) UnverifiedClaims() Claims {
	return t.claims.Clone()
}

// Unverified returns the decoded token marked as not verified
func (t *ParsedToken) Unverified() *DecodedToken {
	return &DecodedToken{
		Header:   t.header.Clone(),
		Payload:  t.claims.Clone(),
		Verified: false,
	}
}

// VerifiedToken is a token with the signature checked
// against the provided secret.
type VerifiedToken struct {
	raw    string
	header Header
	claims Claims
}

// Raw returns the compact serialization
func (t *VerifiedToken) Raw() string {
	return t.raw
}

// Header returns a copy of the header
func (t *VerifiedToken) Header() Header {
	return t.header.Clone()
}

// Claims returns a copy of the authenticated claims
func (t *VerifiedToken) Claims() Claims {
	return t.claims.Clone()
}

// Validate returns error if the claims do not satisfy the config
func (t *VerifiedToken) Validate(cfg *VerifyConfig) error {
	return t.claims.Valid(cfg)
}

// Decoded returns the decoded token marked as verified
func (t *VerifiedToken) Decoded() *DecodedToken {
	return &DecodedToken{
		Header:   t.header.Clone(),
		Payload:  t.claims.Clone(),
		Verified: true,
	}
}

// DecodedToken is the output of Decode and DecodeUnverified.
// Verified is true only when the signature was checked.
type DecodedToken struct {
	Header   Header `json:"header"`
	Payload  Claims `json:"payload"`
	Verified bool   `json:"verified"`
}
