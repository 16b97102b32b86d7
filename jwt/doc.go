// Package jwt provides JSON Web Token (JWT) encoding, parsing and HMAC verification.
//
// This package implements the JWT compact serialization as defined by RFC 7519
// over RFC 7515 JWS, with support for:
//   - HS256, HS384 and HS512 signing and constant time verification
//   - a registry of signing methods keyed by algorithm
//   - strict base64url and JSON decoding with classified errors
//   - distinct types for parsed, verified and explicitly unverified tokens
//   - registered claims helpers and claims validation
//
// The unsecured "none" algorithm is rejected, unless a Codec is created
// with WithUnsecuredNone.
//
// Errors can be classified with errors.Is against ErrMalformedBase64,
// ErrMalformedToken, ErrInvalidHeaderJSON, ErrInvalidClaimsJSON,
// ErrUnsupportedAlgorithm, ErrVerificationFailed, ErrMissingSecret
// and ErrInvalidClaims.
package jwt
