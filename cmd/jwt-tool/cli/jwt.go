package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/effective-security/x/guid"
	"github.com/effective-security/xjwt/jwt"
	"github.com/effective-security/xlog"
)

// EncodeCmd signs claims
type EncodeCmd struct {
	In     string        `kong:"arg" optional:"" help:"file with claims JSON object, or - for stdin"`
	Secret string        `help:"HMAC secret, supports env:// and file:// schemas"`
	Alg    string        `help:"signing algorithm, HS256 if not configured"`
	Kid    string        `help:"key ID to set in the header"`
	Typ    *bool         `help:"set typ header, use --typ=false to omit"`
	Expiry time.Duration `help:"add iat and exp claims, valid for the duration"`
	Jti    bool          `help:"add generated jti claim"`
}

// Run the command
func (a *EncodeCmd) Run(ctx *Cli) error {
	raw, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}
	claims, err := jwt.UnmarshalClaims(raw, true)
	if err != nil {
		return err
	}

	if a.Expiry > 0 {
		now := jwt.TimeNowFn().Truncate(time.Second).UTC()
		claims[jwt.ClaimIssuedAt] = now.Unix()
		claims[jwt.ClaimExpiresAt] = now.Add(a.Expiry).Unix()
	}
	if a.Jti && claims.ID() == "" {
		claims[jwt.ClaimID] = guid.MustCreate()
	}

	cfg := ctx.Config()
	alg := jwt.Algorithm(a.Alg)
	if alg == "" {
		alg = jwt.Algorithm(cfg.Algorithm)
	}
	if alg == "" {
		alg = jwt.HS256
	}

	kid := a.Kid
	if kid == "" {
		kid = cfg.KeyID
	}

	var opts []jwt.Option
	if kid != "" {
		opts = append(opts, jwt.WithHeaders(map[string]any{jwt.HeaderKeyID: kid}))
	}
	if a.Typ != nil && !*a.Typ {
		opts = append(opts, jwt.WithTokenType(""))
	}
	codec, err := ctx.Codec(opts...)
	if err != nil {
		return err
	}

	var secret []byte
	if alg != jwt.None {
		secret, err = ctx.Secret(a.Secret, kid)
		if err != nil {
			return err
		}
	}

	token, err := codec.Encode(claims, secret, alg)
	if err != nil {
		return err
	}
	logger.KV(xlog.DEBUG, "status", "encoded", "alg", alg, "kid", kid)

	fmt.Fprintln(ctx.Writer(), token)
	return nil
}

// DecodeCmd verifies and prints a token
type DecodeCmd struct {
	In         string        `kong:"arg" optional:"" help:"file with the token, or - for stdin"`
	Secret     string        `help:"HMAC secret, supports env:// and file:// schemas"`
	NoValidate bool          `help:"print the token without signature verification"`
	Claims     bool          `help:"validate exp, nbf, iat and configured issuer and audience"`
	Leeway     time.Duration `help:"allowed clock skew for time claims"`
	Text       bool          `help:"print as text instead of JSON"`
}

// Run the command
func (a *DecodeCmd) Run(ctx *Cli) error {
	b, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(string(b))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}

	codec, err := ctx.Codec()
	if err != nil {
		return err
	}

	if a.NoValidate {
		dt, err := codec.DecodeUnverified(raw)
		if err != nil {
			return err
		}
		a.print(ctx, dt)
		return nil
	}

	pt, err := codec.Parse(raw)
	if err != nil {
		return err
	}

	var secret []byte
	if pt.Header().Algorithm != jwt.None {
		secret, err = ctx.Secret(a.Secret, pt.Header().KeyID)
		if err != nil {
			return err
		}
	}

	vt, err := pt.Verify(secret)
	if err != nil {
		return err
	}

	if a.Claims {
		cfg := ctx.Config()
		err = vt.Validate(&jwt.VerifyConfig{
			ExpectedIssuer:   cfg.Issuer,
			ExpectedAudience: cfg.Audience,
			Leeway:           a.Leeway,
		})
		if err != nil {
			return err
		}
	}

	a.print(ctx, vt.Decoded())
	return nil
}

func (a *DecodeCmd) print(ctx *Cli, dt *jwt.DecodedToken) {
	if a.Text {
		ctx.Print(dt)
	} else {
		ctx.WriteJSON(dt)
	}
}
