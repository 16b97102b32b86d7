package jwt

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/guid"
	"github.com/effective-security/xlog"
)

// Registered claim names
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// TimeNowFn to override in unit tests
var TimeNowFn = time.Now

// Claims provides generic claims on map
type Claims map[string]any

// CreateClaims returns claims with iss, sub, aud, jti, iat and exp.
// If id is empty, a new one is generated.
// Zero expiry does not set exp.
func CreateClaims(id, subject, issuer string, audience []string, expiry time.Duration, extra Claims) Claims {
	if id == "" {
		id = guid.MustCreate()
	}
	now := TimeNowFn().Truncate(time.Second).UTC()

	c := Claims{
		ClaimID:       id,
		ClaimIssuedAt: now.Unix(),
	}
	if subject != "" {
		c[ClaimSubject] = subject
	}
	if issuer != "" {
		c[ClaimIssuer] = issuer
	}
	switch len(audience) {
	case 0:
	case 1:
		c[ClaimAudience] = audience[0]
	default:
		c[ClaimAudience] = slices.Clone(audience)
	}
	if expiry > 0 {
		c[ClaimExpiresAt] = now.Add(expiry).Unix()
	}
	c.merge(extra)
	return c
}

// Add new claims to the map
func (c Claims) Add(val ...any) error {
	for _, i := range val {
		if i == nil {
			continue
		}
		switch m := i.(type) {
		case map[string]any:
			c.merge(m)
		case Claims:
			c.merge(m)
		default:
			if reflect.Indirect(reflect.ValueOf(i)).Kind() == reflect.Struct {
				m, err := normalize(i)
				if err != nil {
					return errors.WithStack(err)
				}
				c.merge(m)
			} else {
				return errors.Errorf("unsupported claims interface")
			}
		}
	}
	return nil
}

// To converts the claims to the value pointed to by v.
func (c Claims) To(val any) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.WithStack(err)
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	if err := d.Decode(val); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Clone returns a deep copy of the claims
func (c Claims) Clone() Claims {
	if c == nil {
		return nil
	}
	return Claims(cloneMap(c))
}

// Marshal returns JSON encoded string
func (c Claims) Marshal() string {
	raw, _ := MarshalClaims(c)
	return string(raw)
}

func (c Claims) merge(m map[string]any) {
	for k, v := range m {
		c[k] = v
	}
}

func normalize(i any) (map[string]any, error) {
	m := make(map[string]any)

	raw, err := json.Marshal(i)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()

	if err := d.Decode(&m); err != nil {
		return nil, errors.WithStack(err)
	}

	return m, nil
}

// Subject returns "sub" claim
func (c Claims) Subject() string {
	return c.String(ClaimSubject)
}

// Issuer returns "iss" claim
func (c Claims) Issuer() string {
	return c.String(ClaimIssuer)
}

// ID returns "jti" claim
func (c Claims) ID() string {
	return c.String(ClaimID)
}

// Audience returns "aud" claim, which can be a string or an array
func (c Claims) Audience() []string {
	switch tv := c[ClaimAudience].(type) {
	case string:
		if tv == "" {
			return nil
		}
		return []string{tv}
	case []string:
		return tv
	case []any:
		var aud []string
		for _, v := range tv {
			if s, ok := v.(string); ok {
				aud = append(aud, s)
			}
		}
		return aud
	}
	return nil
}

// ExpiresAt returns "exp" claim
func (c Claims) ExpiresAt() *time.Time {
	return c.Time(ClaimExpiresAt)
}

// NotBefore returns "nbf" claim
func (c Claims) NotBefore() *time.Time {
	return c.Time(ClaimNotBefore)
}

// IssuedAt returns "iat" claim
func (c Claims) IssuedAt() *time.Time {
	return c.Time(ClaimIssuedAt)
}

// String will return the named claim as a string,
// if the underlying type is not a string,
// it will try and co-oerce it to a string.
func (c Claims) String(k string) string {
	v := c[k]
	if v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case json.Number:
		return tv.String()
	default:
		return xlog.EscapedString(v)
	}
}

// Bool will return the named claim as Bool
func (c Claims) Bool(k string) bool {
	v := c[k]
	if v == nil {
		return false
	}
	switch tv := v.(type) {
	case bool:
		return tv
	default:
		return false
	}
}

// Time will return the named claim as Time
func (c Claims) Time(k string) *time.Time {
	v := c[k]
	if v == nil {
		return nil
	}
	switch tv := v.(type) {
	case time.Time:
		return &tv
	case *time.Time:
		return tv
	case int64:
		t := time.Unix(tv, 0)
		return &t
	case uint64:
		if tv > math.MaxInt64 {
			return nil
		}
		t := time.Unix(int64(tv), 0)
		return &t
	case int:
		t := time.Unix(int64(tv), 0)
		return &t
	case float64:
		return unixFloat(tv)
	case json.Number:
		if unix, err := tv.Int64(); err == nil {
			t := time.Unix(unix, 0)
			return &t
		}
		f, err := tv.Float64()
		if err != nil {
			return nil
		}
		return unixFloat(f)
	case string:
		if len(tv) > 20 {
			t, err := time.Parse("2006-01-02T15:04:05.000-0700", tv)
			if err != nil {
				return nil
			}
			return &t
		}
		unix, err := strconv.ParseInt(tv, 10, 64)
		if err != nil {
			return nil
		}
		t := time.Unix(unix, 0)
		return &t
	default:
		return nil
	}
}

// unixFloat returns time for seconds since epoch,
// or nil if the value is out of range
func unixFloat(f float64) *time.Time {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	sec, frac := math.Modf(f)
	t := time.Unix(int64(sec), int64(frac*1e9))
	return &t
}

// Int will return the named claim as an int
func (c Claims) Int(k string) int {
	v := c[k]
	if v == nil {
		return 0
	}
	switch tv := v.(type) {
	case int:
		return tv
	case int32:
		return int(tv)
	case int64:
		return int(tv)
	case uint:
		if tv > math.MaxInt {
			return 0
		}
		return int(tv)
	case uint32:
		return int(tv)
	case uint64:
		if tv > math.MaxInt {
			return 0
		}
		return int(tv)
	case float64:
		if math.IsNaN(tv) || tv < math.MinInt || tv >= math.MaxInt {
			return 0
		}
		return int(tv)
	case json.Number:
		i, err := tv.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(tv)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// VerifyIssuer returns error if the "iss" claim does not match.
// If required is false, a missing claim is accepted.
func (c Claims) VerifyIssuer(expected string, required bool) error {
	iss := c.Issuer()
	if iss == "" {
		if required {
			return kindf(ErrInvalidClaims, "iss claim not found")
		}
		return nil
	}
	if iss != expected {
		return kindf(ErrInvalidClaims, "invalid issuer: %s, expected: %s", iss, expected)
	}
	return nil
}

// VerifySubject returns error if the "sub" claim does not match.
// If required is false, a missing claim is accepted.
func (c Claims) VerifySubject(expected string, required bool) error {
	sub := c.Subject()
	if sub == "" {
		if required {
			return kindf(ErrInvalidClaims, "sub claim not found")
		}
		return nil
	}
	if sub != expected {
		return kindf(ErrInvalidClaims, "invalid subject: %s, expected: %s", sub, expected)
	}
	return nil
}

// VerifyAudience returns error if the "aud" claim
// does not contain any of the expected values.
func (c Claims) VerifyAudience(expected []string, required bool) error {
	aud := c.Audience()
	if len(aud) == 0 {
		if required {
			return kindf(ErrInvalidClaims, "aud claim not found")
		}
		return nil
	}
	for _, e := range expected {
		if slices.Contains(aud, e) {
			return nil
		}
	}
	return kindf(ErrInvalidClaims, "token missing audience: %s", strings.Join(expected, ","))
}

// VerifyExpiresAt returns error if the token is expired at now
func (c Claims) VerifyExpiresAt(now time.Time, required bool) error {
	exp := c.ExpiresAt()
	if exp == nil {
		if required {
			return kindf(ErrInvalidClaims, "exp claim not found")
		}
		return nil
	}
	if !now.Before(*exp) {
		return kindf(ErrInvalidClaims, "token expired at: %s", exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// VerifyNotBefore returns error if the token is not valid yet at now
func (c Claims) VerifyNotBefore(now time.Time, required bool) error {
	nbf := c.NotBefore()
	if nbf == nil {
		if required {
			return kindf(ErrInvalidClaims, "nbf claim not found")
		}
		return nil
	}
	if now.Before(*nbf) {
		return kindf(ErrInvalidClaims, "token not valid yet, not before: %s", nbf.UTC().Format(time.RFC3339))
	}
	return nil
}

// VerifyIssuedAt returns error if the token was issued after now
func (c Claims) VerifyIssuedAt(now time.Time, required bool) error {
	iat := c.IssuedAt()
	if iat == nil {
		if required {
			return kindf(ErrInvalidClaims, "iat claim not found")
		}
		return nil
	}
	if now.Before(*iat) {
		return kindf(ErrInvalidClaims, "token issued after now: %s", iat.UTC().Format(time.RFC3339))
	}
	return nil
}

// VerifyConfig expresses the possible options for validating claims of a verified token
type VerifyConfig struct {
	// ExpectedIssuer validates the iss claim of a JWT matches this value
	ExpectedIssuer string
	// ExpectedSubject validates the sub claim of a JWT matches this value
	ExpectedSubject string
	// ExpectedAudience validates that the aud claim of a JWT contains one of these values
	ExpectedAudience []string
	// Leeway is the allowed clock skew for exp, nbf and iat
	Leeway time.Duration
}

// Valid returns error if the claims do not satisfy the config.
// Time based claims are checked only when present.
func (c Claims) Valid(cfg *VerifyConfig) error {
	if cfg == nil {
		cfg = &VerifyConfig{}
	}
	now := TimeNowFn()

	if err := c.VerifyExpiresAt(now.Add(-cfg.Leeway), false); err != nil {
		return err
	}
	if err := c.VerifyNotBefore(now.Add(cfg.Leeway), false); err != nil {
		return err
	}
	if err := c.VerifyIssuedAt(now.Add(cfg.Leeway), false); err != nil {
		return err
	}
	if cfg.ExpectedIssuer != "" {
		if err := c.VerifyIssuer(cfg.ExpectedIssuer, true); err != nil {
			return err
		}
	}
	if cfg.ExpectedSubject != "" {
		if err := c.VerifySubject(cfg.ExpectedSubject, true); err != nil {
			return err
		}
	}
	if len(cfg.ExpectedAudience) > 0 {
		if err := c.VerifyAudience(cfg.ExpectedAudience, true); err != nil {
			return err
		}
	}
	return nil
}

// cloneMap returns a deep copy of JSON-like values,
// other values are copied by assignment.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case Claims:
		return Claims(cloneMap(tv))
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(tv)
	}
	return v
}
