package jwt

import (
	"sync"
)

// Algorithm is the value of the "alg" header
type Algorithm string

// Supported algorithms
const (
	// HS256 is HMAC with SHA-256
	HS256 Algorithm = "HS256"
	// HS384 is HMAC with SHA-384
	HS384 Algorithm = "HS384"
	// HS512 is HMAC with SHA-512
	HS512 Algorithm = "HS512"
	// None is the unsecured JWS algorithm.
	// It is recognized, but rejected unless the Codec is created with WithUnsecuredNone.
	None Algorithm = "none"
)

// String returns the "alg" value
func (a Algorithm) String() string {
	return string(a)
}

// SigningMethod computes and checks signatures for one algorithm
type SigningMethod interface {
	// Algorithm returns the algorithm implemented by the method
	Algorithm() Algorithm
	// Sign returns signature of the signing input
	Sign(signingInput, secret []byte) ([]byte, error)
	// Verify returns false if the signature does not match the signing input.
	// An error is returned only when the signature can not be computed.
	Verify(signingInput, secret, signature []byte) (bool, error)
}

var (
	methodsLock sync.RWMutex
	methods     = map[Algorithm]SigningMethod{}
)

func init() {
	RegisterSigningMethod(SigningMethodHS256)
	RegisterSigningMethod(SigningMethodHS384)
	RegisterSigningMethod(SigningMethodHS512)
}

// RegisterSigningMethod registers the method for its algorithm,
// replacing a previously registered one.
// The unsecured None algorithm can not be registered.
func RegisterSigningMethod(m SigningMethod) {
	alg := m.Algorithm()
	if alg == None {
		logger.Panicf("the %q algorithm can not be registered", alg)
	}

	methodsLock.Lock()
	defer methodsLock.Unlock()
	methods[alg] = m
}

// GetSigningMethod returns the registered method for the algorithm
func GetSigningMethod(alg Algorithm) (SigningMethod, error) {
	methodsLock.RLock()
	defer methodsLock.RUnlock()

	if m, ok := methods[alg]; ok {
		return m, nil
	}
	return nil, kindf(ErrUnsupportedAlgorithm, "%q", alg)
}

// SignMAC returns signature of the signing input with the registered method for alg
func SignMAC(signingInput, secret []byte, alg Algorithm) ([]byte, error) {
	m, err := GetSigningMethod(alg)
	if err != nil {
		return nil, err
	}
	return m.Sign(signingInput, secret)
}

// VerifyMAC checks the signature of the signing input with the registered method for alg.
// Mismatch is reported as false with no error.
func VerifyMAC(signingInput, secret []byte, alg Algorithm, signature []byte) (bool, error) {
	m, err := GetSigningMethod(alg)
	if err != nil {
		return false, err
	}
	return m.Verify(signingInput, secret, signature)
}
