package jwt

import (
	"time"

	"github.com/effective-security/xjwt/metricskey"
	"github.com/effective-security/xlog"
)

// Parse splits the token and decodes the header, claims and signature.
// The signature is not checked, use ParsedToken.Verify.
func Parse(raw string) (*ParsedToken, error) {
	return defaultCodec.Parse(raw)
}

// Verify parses the token and checks its signature
func Verify(raw string, secret []byte) (*VerifiedToken, error) {
	return defaultCodec.Verify(raw, secret)
}

// Decode parses the token, checks its signature
// and returns the decoded token marked as verified.
func Decode(raw string, secret []byte) (*DecodedToken, error) {
	return defaultCodec.Decode(raw, secret)
}

// DecodeUnverified parses the token but doesn't validate the signature.
// The result is marked as not verified.
// WARNING: Don't use this method unless you know what you're doing,
// the claims are not authenticated.
func DecodeUnverified(raw string) (*DecodedToken, error) {
	return defaultCodec.DecodeUnverified(raw)
}

// Parse splits the token and decodes the header, claims and signature.
// The algorithm is checked before the claims are decoded.
func (c *Codec) Parse(raw string) (*ParsedToken, error) {
	segments, err := c.Split(raw)
	if err != nil {
		return nil, err
	}

	headerJSON, err := DecodeSegment(segments.Header)
	if err != nil {
		return nil, wrapf(err, ErrMalformedBase64, "unable to decode header segment")
	}
	header, err := UnmarshalHeader(headerJSON)
	if err != nil {
		return nil, err
	}

	logger.KV(xlog.TRACE, "alg", header.Algorithm, "kid", header.KeyID)

	method, err := c.signingMethod(header.Algorithm)
	if err != nil {
		return nil, err
	}

	claimsJSON, err := DecodeSegment(segments.Payload)
	if err != nil {
		return nil, wrapf(err, ErrMalformedBase64, "unable to decode payload segment")
	}
	claims, err := UnmarshalClaims(claimsJSON, c.useJSONNumber)
	if err != nil {
		return nil, err
	}

	signature, err := DecodeSegment(segments.Signature)
	if err != nil {
		return nil, wrapf(err, ErrMalformedBase64, "unable to decode signature segment")
	}
	if header.Algorithm == None && len(signature) > 0 {
		return nil, kindf(ErrMalformedToken, "unsecured token must have empty signature")
	}

	return &ParsedToken{
		codec:     c,
		raw:       raw,
		segments:  segments,
		header:    *header,
		claims:    claims,
		signature: signature,
		method:    method,
	}, nil
}

// Verify parses the token and checks its signature
func (c *Codec) Verify(raw string, secret []byte) (*VerifiedToken, error) {
	t, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	return t.Verify(secret)
}

// Decode parses the token, checks its signature
// and returns the decoded token marked as verified.
// An empty secret is an error, use DecodeUnverified to skip verification.
func (c *Codec) Decode(raw string, secret []byte) (*DecodedToken, error) {
	t, err := c.Verify(raw, secret)
	if err != nil {
		return nil, err
	}
	return t.Decoded(), nil
}

// DecodeUnverified parses the token but doesn't validate the signature.
// The result is marked as not verified.
func (c *Codec) DecodeUnverified(raw string) (*DecodedToken, error) {
	t, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG, "reason", "unverified", "alg", t.header.Algorithm)
	return t.Unverified(), nil
}

// Verify checks the signature with the secret.
// Unsecured tokens fail verification, use Unverified to read them.
func (t *ParsedToken) Verify(secret []byte) (*VerifiedToken, error) {
	if t.header.Algorithm == None {
		logger.KV(xlog.DEBUG, "reason", "unsecured", "alg", t.header.Algorithm)
		return nil, kindf(ErrVerificationFailed, "unsecured token can not be verified")
	}
	if len(secret) == 0 {
		return nil, kindf(ErrMissingSecret, "unable to verify token")
	}

	// the method was resolved at parse time, check it is still allowed
	if _, err := t.codec.signingMethod(t.header.Algorithm); err != nil {
		return nil, err
	}
	defer metricskey.PerfJWTOperation.MeasureSince(time.Now(), t.header.Algorithm.String(), "verify")

	ok, err := t.method.Verify([]byte(t.segments.SigningInput()), secret, t.signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.KV(xlog.DEBUG, "reason", "invalid_signature", "alg", t.header.Algorithm, "kid", t.header.KeyID)
		return nil, kindf(ErrVerificationFailed, "unable to verify token")
	}

	return &VerifiedToken{
		raw:    t.raw,
		header: t.header.Clone(),
		claims: t.claims.Clone(),
	}, nil
}
