package pingone

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestToken_Valid(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		tok  Token
		want bool
	}{
		{"vacío", Token{}, false},
		{"sin expiry", Token{AccessToken: "x"}, false},
		{"vigente", Token{AccessToken: "x", ExpiresAt: now.Add(10 * time.Minute)}, true},
		{"dentro del margen", Token{AccessToken: "x", ExpiresAt: now.Add(30 * time.Second)}, false},
		{"justo fuera del margen", Token{AccessToken: "x", ExpiresAt: now.Add(61 * time.Second)}, true},
		{"vencido", Token{AccessToken: "x", ExpiresAt: now.Add(-time.Minute)}, false},
	}
	for _, tc := range cases {
		if got := tc.tok.Valid(now); got != tc.want {
			t.Errorf("%s: Valid = %v, esperaba %v", tc.name, got, tc.want)
		}
	}
}

func TestToken_Preview(t *testing.T) {
	long := Token{AccessToken: "abcdefghijklmnopqrstuvwxyz"}
	if got := long.Preview(); got != "abcdefghijklmnopqrst..." {
		t.Fatalf("Preview %q", got)
	}
	short := Token{AccessToken: "abc"}
	if got := short.Preview(); got != "abc" {
		t.Fatalf("Preview corto %q", got)
	}
}

func TestToken_Claims(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"env": "env-1",
		"iss": "https://auth.pingone.com/env-1/as",
	}).SignedString([]byte("clave-de-test"))
	if err != nil {
		t.Fatalf("firmar jwt de test: %v", err)
	}

	tok := Token{AccessToken: raw}
	if !tok.LooksLikeJWT() {
		t.Fatalf("LooksLikeJWT = false para un JWT real")
	}
	claims, ok := tok.Claims()
	if !ok {
		t.Fatalf("Claims falló")
	}
	if claims["env"] != "env-1" {
		t.Fatalf("claim env = %v", claims["env"])
	}

	opaque := Token{AccessToken: "no-es-un-jwt"}
	if opaque.LooksLikeJWT() {
		t.Fatalf("LooksLikeJWT = true para token opaco")
	}
	if _, ok := opaque.Claims(); ok {
		t.Fatalf("Claims aceptó un token opaco")
	}
}

func TestTokenCache_PutGetInvalidate(t *testing.T) {
	cache := NewTokenCache()
	conn := Connection{EnvironmentID: "env-1", ClientID: "worker-1"}
	other := Connection{EnvironmentID: "env-2", ClientID: "worker-1"}

	if got := cache.Get(conn); !got.IsZero() {
		t.Fatalf("cache vacío devolvió token: %+v", got)
	}

	tok := Token{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	cache.Put(conn, tok)

	if got := cache.Get(conn); got.AccessToken != "tok-1" {
		t.Fatalf("Get tras Put: %+v", got)
	}
	// Otra conexión no ve el token.
	if got := cache.Get(other); !got.IsZero() {
		t.Fatalf("el token se filtró a otra conexión: %+v", got)
	}

	cache.Invalidate(conn)
	if got := cache.Get(conn); !got.IsZero() {
		t.Fatalf("Invalidate no borró el token: %+v", got)
	}
}

func TestTokenCache_SkipsExpired(t *testing.T) {
	cache := NewTokenCache()
	conn := Connection{EnvironmentID: "env-1", ClientID: "worker-1"}

	// Token que vence dentro del margen de seguridad: no se cachea.
	cache.Put(conn, Token{AccessToken: "casi-vencido", ExpiresAt: time.Now().Add(10 * time.Second)})
	if got := cache.Get(conn); !got.IsZero() {
		t.Fatalf("cacheó un token dentro del margen: %+v", got)
	}
}
