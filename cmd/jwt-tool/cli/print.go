package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/effective-security/x/print"
	"github.com/effective-security/xjwt/jwt"
)

func init() {
	print.RegisterType((*jwt.DecodedToken)(nil), func(w io.Writer, v any) {
		printDecodedToken(w, v.(*jwt.DecodedToken))
	})
}

var timeClaims = []string{jwt.ClaimExpiresAt, jwt.ClaimNotBefore, jwt.ClaimIssuedAt}

func printDecodedToken(w io.Writer, t *jwt.DecodedToken) {
	printHeader(w, &t.Header)
	fmt.Fprintf(w, "Verified: %t\n", t.Verified)
	printClaims(w, t.Payload)
}

func printHeader(w io.Writer, h *jwt.Header) {
	fmt.Fprintf(w, "Algorithm: %s\n", h.Algorithm)
	if h.Type != "" {
		fmt.Fprintf(w, "Type: %s\n", h.Type)
	}
	if h.ContentType != "" {
		fmt.Fprintf(w, "Content Type: %s\n", h.ContentType)
	}
	if h.KeyID != "" {
		fmt.Fprintf(w, "Key ID: %s\n", h.KeyID)
	}
	for _, k := range sortedKeys(h.Extra) {
		fmt.Fprintf(w, "Header %s: %s\n", k, claimValue(h.Extra[k]))
	}
}

// printClaims prints claims sorted by name,
// time claims are followed by RFC3339 time
func printClaims(w io.Writer, c jwt.Claims) {
	fmt.Fprintf(w, "Claims:\n")
	for _, k := range sortedKeys(c) {
		v := claimValue(c[k])
		if slices.Contains(timeClaims, k) {
			if t := c.Time(k); t != nil {
				v = fmt.Sprintf("%s (%s)", v, t.UTC().Format(time.RFC3339))
			}
		}
		fmt.Fprintf(w, "  %s: %s\n", k, v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func claimValue(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case json.Number:
		return tv.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(string(b))
}
