package token

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("0123456789abcdef0123456789abcdef"),
		RefreshSecret: []byte("fedcba9876543210fedcba9876543210"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "authward-test",
	}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testConfig())
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short access secret", func(c *Config) { c.AccessSecret = []byte("short") }},
		{"short refresh secret", func(c *Config) { c.RefreshSecret = []byte("short") }},
		{"identical secrets", func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }},
		{"excessive leeway", func(c *Config) { c.Leeway = 3 * time.Minute }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewCodec(cfg); err == nil {
				t.Fatal("expected config error, got nil")
			}
		})
	}
}

func TestAccessRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.SignAccess("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}

	claims, err := codec.ParseAccess(signed)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.SubjectID() != "u-1" {
		t.Errorf("subject = %q, want u-1", claims.SubjectID())
	}
	if claims.Email != "u1@x.com" {
		t.Errorf("email = %q, want u1@x.com", claims.Email)
	}
	if claims.Role != "member" {
		t.Errorf("role = %q, want member", claims.Role)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.SignRefresh("u-2", "u2@x.com", "admin")
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	claims, err := codec.ParseRefresh(signed)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.SubjectID() != "u-2" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestCrossContextVerificationFails(t *testing.T) {
	codec := newTestCodec(t)

	access, err := codec.SignAccess("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	refresh, err := codec.SignRefresh("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	if _, err := codec.ParseRefresh(access); err == nil {
		t.Fatal("access token verified against refresh secret")
	}
	if _, err := codec.ParseAccess(refresh); err == nil {
		t.Fatal("refresh token verified against access secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Nanosecond
	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	signed, err := codec.SignAccess("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := codec.ParseAccess(signed); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.SignAccess("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", signed)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := codec.ParseAccess(tampered); err == nil {
		t.Fatal("tampered payload accepted")
	}
}

func TestIssuerMismatchRejected(t *testing.T) {
	codec := newTestCodec(t)

	other := testConfig()
	other.Issuer = "someone-else"
	otherCodec, err := NewCodec(other)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	signed, err := otherCodec.SignAccess("u-1", "u1@x.com", "member")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := codec.ParseAccess(signed); err == nil {
		t.Fatal("token with wrong issuer accepted")
	}
}
