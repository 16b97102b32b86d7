package jwt

/*
MIT License.

Copyright 2022 Denis Issoupov

Permission is hereby granted, free of charge, to any person obtaining
a copy of this software and associated documentation files (the
"Software"), to deal in the Software without restriction, including
without limitation the rights to use, copy, modify, merge, publish,
distribute, sublicense, and/or sell copies of the Software, and to
permit persons to whom the Software is furnished to do so, subject to
the following conditions:

The above copyright notice and this permission notice shall be
included in all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

import (
	"crypto"
	"crypto/hmac"

	// register hash implementations
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// HMAC signing methods
var (
	SigningMethodHS256 SigningMethod = &hmacMethod{algo: HS256, hash: crypto.SHA256}
	SigningMethodHS384 SigningMethod = &hmacMethod{algo: HS384, hash: crypto.SHA384}
	SigningMethodHS512 SigningMethod = &hmacMethod{algo: HS512, hash: crypto.SHA512}
)

type hmacMethod struct {
	algo Algorithm
	hash crypto.Hash
}

// Algorithm implements SigningMethod
func (m *hmacMethod) Algorithm() Algorithm {
	return m.algo
}

// Sign implements SigningMethod
func (m *hmacMethod) Sign(signingInput, secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, kindf(ErrMissingSecret, "%s", m.algo)
	}
	if !m.hash.Available() {
		return nil, kindf(ErrUnsupportedAlgorithm, "hash function not available for %s", m.algo)
	}

	h := hmac.New(m.hash.New, secret)
	_, _ = h.Write(signingInput)
	return h.Sum(nil), nil
}

// Verify implements SigningMethod.
// The MAC is compared in constant time.
func (m *hmacMethod) Verify(signingInput, secret, signature []byte) (bool, error) {
	expected, err := m.Sign(signingInput, secret)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, signature), nil
}
