package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/xjwt/jwt"
)

// Key for HMAC signature
type Key struct {
	// ID of the key, set in the kid header
	ID string `json:"id" yaml:"id"`
	// Seed is the secret, supports env:// and file:// schemas
	Seed string `json:"seed" yaml:"seed"`
}

// Config provides jwt-tool configuration
type Config struct {
	// Algorithm specifies default signing algorithm
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	// Secret specifies default secret, supports env:// and file:// schemas
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
	// KeyID specifies ID of the current key from Keys
	KeyID string `json:"kid,omitempty" yaml:"kid,omitempty"`
	// Keys specifies list of secrets by their ID
	Keys []*Key `json:"keys,omitempty" yaml:"keys,omitempty"`
	// Type specifies typ header, JWT by default
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// AllowedAlgorithms restricts accepted algorithms
	AllowedAlgorithms []string `json:"allowed_algorithms,omitempty" yaml:"allowed_algorithms,omitempty"`
	// AllowNone enables unsecured tokens
	AllowNone bool `json:"allow_none,omitempty" yaml:"allow_none,omitempty"`
	// MaxTokenSize specifies max size of a token to decode
	MaxTokenSize int `json:"max_token_size,omitempty" yaml:"max_token_size,omitempty"`
	// Issuer specifies expected iss claim
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	// Audience specifies expected aud claim
	Audience []string `json:"audience,omitempty" yaml:"audience,omitempty"`
}

// LoadConfig returns configuration loaded from a file,
// secrets are resolved
func LoadConfig(file string) (*Config, error) {
	config := new(Config)
	if file == "" {
		return config, nil
	}
	err := configloader.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if config.Secret != "" {
		config.Secret, err = resolveValue(config.Secret)
		if err != nil {
			return nil, errors.WithMessage(err, "unable to resolve secret")
		}
	}
	for _, key := range config.Keys {
		if key.ID == "" {
			return nil, errors.Errorf("missing key id: %q", file)
		}
		key.Seed, err = resolveValue(key.Seed)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to resolve seed for key %q", key.ID)
		}
	}
	if config.KeyID != "" && config.key(config.KeyID) == nil {
		return nil, errors.Errorf("key not found: %q", config.KeyID)
	}
	if config.Algorithm != "" {
		if _, err = jwt.GetSigningMethod(jwt.Algorithm(config.Algorithm)); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// resolveValue returns the value loaded from env:// or file://,
// trailing new line of a file is trimmed
func resolveValue(val string) (string, error) {
	s, err := configloader.ResolveValue(val)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(val, configloader.FileSource) {
		s = strings.TrimRight(s, "\r\n")
	}
	return s, nil
}

func (c *Config) key(id string) *Key {
	for _, key := range c.Keys {
		if key.ID == id {
			return key
		}
	}
	return nil
}

// SecretFor returns the secret for the key ID.
// Empty kid uses the current key, then the default secret.
func (c *Config) SecretFor(kid string) []byte {
	if kid == "" {
		kid = c.KeyID
	}
	if kid != "" {
		if key := c.key(kid); key != nil {
			return []byte(key.Seed)
		}
		return nil
	}
	return []byte(c.Secret)
}

// CodecOptions returns jwt.Codec options for the configuration
func (c *Config) CodecOptions() ([]jwt.Option, error) {
	var opts []jwt.Option
	if len(c.AllowedAlgorithms) > 0 {
		algs := make([]jwt.Algorithm, len(c.AllowedAlgorithms))
		for i, a := range c.AllowedAlgorithms {
			algs[i] = jwt.Algorithm(a)
			if algs[i] == jwt.None {
				continue
			}
			if _, err := jwt.GetSigningMethod(algs[i]); err != nil {
				return nil, errors.WithMessage(err, "invalid allowed_algorithms")
			}
		}
		opts = append(opts, jwt.WithAllowedAlgorithms(algs...))
	}
	if c.AllowNone {
		opts = append(opts, jwt.WithUnsecuredNone())
	}
	if c.MaxTokenSize > 0 {
		opts = append(opts, jwt.WithMaxTokenSize(c.MaxTokenSize))
	}
	if c.Type != "" {
		opts = append(opts, jwt.WithTokenType(c.Type))
	}
	return opts, nil
}
