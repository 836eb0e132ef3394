package pingone

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
)

// safetyMargin es el colchón antes del expiry real: un token se considera
// vencido safetyMargin antes de ExpiresAt para no perder una llamada en vuelo.
const safetyMargin = 60 * time.Second

// Token es el bearer token vigente con su expiry absoluto.
// Nunca se persiste; vive en memoria durante una corrida.
type Token struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresAt   time.Time
}

// IsZero indica si el token está vacío (ningún Authenticate todavía).
func (t Token) IsZero() bool { return t.AccessToken == "" }

// Valid indica si el token sigue usable en el instante now.
func (t Token) Valid(now time.Time) bool {
	if t.IsZero() || t.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-safetyMargin))
}

// Preview retorna los primeros caracteres del token para logs de debug.
func (t Token) Preview() string {
	const n = 20
	if len(t.AccessToken) <= n {
		return t.AccessToken
	}
	return t.AccessToken[:n] + "..."
}

// LooksLikeJWT chequea la forma xxx.yyy.zzz (PingOne emite JWTs).
func (t Token) LooksLikeJWT() bool {
	return strings.Count(t.AccessToken, ".") == 2
}

// Claims parsea el token SIN verificar firma, solo para loguear scopes/env en
// debug. Jamás usar para decisiones de autorización.
func (t Token) Claims() (jwt.MapClaims, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(t.AccessToken, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// =================================================================================
// TOKEN CACHE
// =================================================================================

// TokenCache guarda tokens por conexión durante una corrida del proceso.
// El caller (la capa de orquestación) es dueño del cache; EnsureToken recibe
// y retorna valores explícitos, sin singleton escondido.
type TokenCache struct {
	c *gocache.Cache
}

// NewTokenCache crea un cache con limpieza pasiva (las corridas son cortas).
func NewTokenCache() *TokenCache {
	return &TokenCache{c: gocache.New(gocache.NoExpiration, 0)}
}

// Get retorna el token cacheado para la conexión, o un Token vacío.
func (tc *TokenCache) Get(conn Connection) Token {
	if tc == nil || tc.c == nil {
		return Token{}
	}
	v, ok := tc.c.Get(conn.cacheKey())
	if !ok {
		return Token{}
	}
	t, _ := v.(Token)
	return t
}

// Put cachea el token con TTL hasta su expiry (menos el margen).
func (tc *TokenCache) Put(conn Connection, t Token) {
	if tc == nil || tc.c == nil || t.IsZero() {
		return
	}
	ttl := time.Until(t.ExpiresAt.Add(-safetyMargin))
	if ttl <= 0 {
		return
	}
	tc.c.Set(conn.cacheKey(), t, ttl)
}

// Invalidate descarta el token cacheado (ej: después de un 401).
func (tc *TokenCache) Invalidate(conn Connection) {
	if tc == nil || tc.c == nil {
		return
	}
	tc.c.Delete(conn.cacheKey())
}
