package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

func TestAudAllowed(t *testing.T) {
	allowed := []string{"ios-client", "android-client"}
	tests := []struct {
		name string
		aud  any
		want bool
	}{
		{"matching string", "ios-client", true},
		{"other string", "web-client", false},
		{"array with match", []any{"web-client", "android-client"}, true},
		{"array without match", []any{"web-client"}, false},
		{"empty array", []any{}, false},
		{"nil", nil, false},
		{"non-string array member", []any{42}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := audAllowed(tt.aud, allowed); got != tt.want {
				t.Errorf("audAllowed(%v) = %v, want %v", tt.aud, got, tt.want)
			}
		})
	}
}

func TestParseNumericTime(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()
	tests := []struct {
		name    string
		in      any
		want    time.Time
		wantErr bool
	}{
		{"float64", float64(1700000000), want, false},
		{"int64", int64(1700000000), want, false},
		{"json number", json.Number("1700000000"), want, false},
		{"string", "1700000000", want, false},
		{"bad string", "soon", time.Time{}, true},
		{"zero", float64(0), time.Time{}, true},
		{"wrong type", []string{"x"}, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNumericTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTimeClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantErr bool
	}{
		{"valid", jwt.MapClaims{"exp": float64(now.Unix() + 600)}, false},
		{"missing exp", jwt.MapClaims{}, true},
		{"expired", jwt.MapClaims{"exp": float64(now.Unix() - 1)}, true},
		{"nbf in the future", jwt.MapClaims{"exp": float64(now.Unix() + 600), "nbf": float64(now.Unix() + 300)}, true},
		{"iat far in the future", jwt.MapClaims{"exp": float64(now.Unix() + 600), "iat": float64(now.Unix() + 3600)}, true},
		{"iat slightly ahead tolerated", jwt.MapClaims{"exp": float64(now.Unix() + 600), "iat": float64(now.Unix() + 60)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTimeClaims(tt.claims, now, 0)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClaimsToExternal(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":            "sub-123",
		"email":          "jane@example.com",
		"email_verified": true,
		"given_name":     "Jane",
		"family_name":    "Doe",
		"picture":        "https://img.example.com/jane.png",
	}
	got := claimsToExternal(types.ProviderGoogle, claims)
	if got.SubjectID != "sub-123" || got.Email != "jane@example.com" {
		t.Fatalf("identity core fields wrong: %+v", got)
	}
	if !got.EmailVerified {
		t.Error("email_verified not carried over")
	}
	if got.FirstName != "Jane" || got.LastName != "Doe" {
		t.Errorf("name fields wrong: %q %q", got.FirstName, got.LastName)
	}
	if got.PhotoURL != "https://img.example.com/jane.png" {
		t.Errorf("photo url wrong: %q", got.PhotoURL)
	}

	// Apple-style payload without name or picture claims.
	sparse := claimsToExternal(types.ProviderApple, jwt.MapClaims{
		"sub":            "apple-sub",
		"email":          "relay@privaterelay.appleid.com",
		"email_verified": "true",
	})
	if sparse.FirstName != "" || sparse.LastName != "" || sparse.PhotoURL != "" {
		t.Errorf("sparse claims must leave optional fields empty: %+v", sparse)
	}
	if !sparse.EmailVerified {
		t.Error("string email_verified not parsed")
	}
}

// jwksFixture hosts a discovery document and a JWKS for one RSA key so the
// full verify path (discovery, key fetch, signature, claims) can run
// without touching the real provider endpoints.
type jwksFixture struct {
	server *httptest.Server
	key    *rsa.PrivateKey
	kid    string
	issuer string
}

func newJWKSFixture(t *testing.T) *jwksFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	f := &jwksFixture{key: key, kid: "test-kid-1"}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"issuer":   f.issuer,
			"jwks_uri": f.server.URL + "/jwks",
		})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		pub := &key.PublicKey
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": f.kid,
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	})

	f.server = httptest.NewServer(mux)
	f.issuer = f.server.URL
	t.Cleanup(f.server.Close)
	return f
}

func (f *jwksFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = f.kid
	signed, err := tok.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (f *jwksFixture) verifier(audiences ...string) *providerVerifier {
	return newProviderVerifier(
		f.server.Client(),
		f.server.URL+"/.well-known/openid-configuration",
		[]string{f.issuer},
		audiences,
		[]string{"RS256"},
	)
}

func baseClaims(f *jwksFixture, aud string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   f.issuer,
		"aud":   aud,
		"sub":   "sub-xyz",
		"email": "jane@example.com",
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	}
}

func TestProviderVerifierFullPath(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier("my-client-id")
	ctx := context.Background()

	token := f.sign(t, baseClaims(f, "my-client-id"))
	claims, err := v.verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != "sub-xyz" {
		t.Fatalf("sub = %q", sub)
	}
}

func TestProviderVerifierRejections(t *testing.T) {
	f := newJWKSFixture(t)
	ctx := context.Background()

	t.Run("wrong audience", func(t *testing.T) {
		v := f.verifier("expected-client")
		token := f.sign(t, baseClaims(f, "someone-elses-client"))
		if _, err := v.verify(ctx, token); err == nil {
			t.Fatal("expected audience rejection")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		v := f.verifier("my-client-id")
		claims := baseClaims(f, "my-client-id")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		claims["iat"] = time.Now().Add(-2 * time.Hour).Unix()
		token := f.sign(t, claims)
		if _, err := v.verify(ctx, token); err == nil {
			t.Fatal("expected expiry rejection")
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		v := f.verifier("my-client-id")
		claims := baseClaims(f, "my-client-id")
		claims["iss"] = "https://evil.example.com"
		token := f.sign(t, claims)
		if _, err := v.verify(ctx, token); err == nil {
			t.Fatal("expected issuer rejection")
		}
	})

	t.Run("symmetric alg smuggling", func(t *testing.T) {
		v := f.verifier("my-client-id")
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims(f, "my-client-id"))
		tok.Header["kid"] = f.kid
		signed, err := tok.SignedString([]byte("guessable"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := v.verify(ctx, signed); err == nil {
			t.Fatal("expected alg rejection")
		}
	})

	t.Run("missing kid", func(t *testing.T) {
		v := f.verifier("my-client-id")
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, baseClaims(f, "my-client-id"))
		signed, err := tok.SignedString(f.key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := v.verify(ctx, signed); err == nil {
			t.Fatal("expected kid rejection")
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		v := f.verifier("my-client-id")
		if _, err := v.verify(ctx, "garbage"); err == nil {
			t.Fatal("expected parse rejection")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		v := f.verifier("my-client-id")
		if _, err := v.verify(ctx, ""); err == nil {
			t.Fatal("expected empty-token rejection")
		}
	})
}

func TestNewOIDCVerifierRequiresAudiences(t *testing.T) {
	if _, err := NewOIDCVerifier(nil, nil, []string{"apple"}); err == nil {
		t.Fatal("expected error without google client ids")
	}
	if _, err := NewOIDCVerifier(nil, []string{"google"}, nil); err == nil {
		t.Fatal("expected error without apple client ids")
	}
	v, err := NewOIDCVerifier(nil, []string{"google"}, []string{"apple"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatal("expected a verifier")
	}
}

func TestRSAFromModExp(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())

	pub, err := rsaFromModExp(n, e)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 || pub.E != key.PublicKey.E {
		t.Fatal("rebuilt key does not match")
	}

	if _, err := rsaFromModExp("!!!", e); err == nil {
		t.Fatal("expected base64 error")
	}
	if _, err := rsaFromModExp(n, base64.RawURLEncoding.EncodeToString([]byte{0})); err == nil {
		t.Fatal("expected zero-exponent error")
	}
}
