package pingone

import (
	"errors"
	"fmt"
)

// =================================================================================
// AUTH ERRORS
// =================================================================================

// AuthErrorKind clasifica las fallas de autenticación.
type AuthErrorKind string

const (
	AuthNetwork            AuthErrorKind = "network"
	AuthInvalidCredentials AuthErrorKind = "invalid-credentials"
	AuthServerError        AuthErrorKind = "server-error"
	AuthMalformedResponse  AuthErrorKind = "malformed-response"
)

// AuthError es el resultado tipado de una falla en el intercambio de token.
// Toda falla de Authenticate se convierte a este tipo; nunca escapa un error crudo.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Status  int   // 0 si no hubo respuesta HTTP
	Err     error // causa original, para logs
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth [%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("auth [%s] %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(kind AuthErrorKind, status int, msg string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: msg, Status: status, Err: cause}
}

// =================================================================================
// REQUEST ERRORS
// =================================================================================

// RequestErrorKind clasifica las fallas de una llamada autenticada.
type RequestErrorKind string

const (
	ReqNetwork           RequestErrorKind = "network"
	ReqTimeout           RequestErrorKind = "timeout"
	ReqUnauthorized      RequestErrorKind = "unauthorized"
	ReqNotFound          RequestErrorKind = "not-found"
	ReqInvalidRequest    RequestErrorKind = "invalid-request"
	ReqServerError       RequestErrorKind = "server-error"
	ReqMalformedResponse RequestErrorKind = "malformed-response"
)

// RequestError es el resultado tipado de una llamada fallida a la Management API.
type RequestError struct {
	Kind    RequestErrorKind
	Method  string
	Path    string
	Status  int    // 0 si la falla fue de transporte
	Message string // mensaje reportado por la API, si lo hubo
	Detail  string // contexto extra (ej: ayuda de permisos en 403)
	Err     error
}

func (e *RequestError) Error() string {
	base := fmt.Sprintf("%s %s [%s]", e.Method, e.Path, e.Kind)
	if e.Status > 0 {
		base = fmt.Sprintf("%s status=%d", base, e.Status)
	}
	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.Err != nil {
		base += ": " + e.Err.Error()
	}
	return base
}

func (e *RequestError) Unwrap() error { return e.Err }

// classifyStatus mapea un status HTTP >= 400 a un kind.
func classifyStatus(status int) RequestErrorKind {
	switch {
	case status == 401:
		return ReqUnauthorized
	case status == 404:
		return ReqNotFound
	case status >= 500:
		return ReqServerError
	default:
		return ReqInvalidRequest
	}
}

// =================================================================================
// HELPERS DE CLASIFICACIÓN
// =================================================================================

// IsUnauthorized indica si err es un 401 (señal de re-autenticar una vez).
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == ReqUnauthorized
}

// IsNotFound indica si err es un 404.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == ReqNotFound
}

// IsTransient distingue errores transitorios (red, timeout, 5xx) de los que el
// caller puede arreglar (credenciales, nombre de atributo inválido).
func IsTransient(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind == ReqNetwork || re.Kind == ReqTimeout || re.Kind == ReqServerError
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind == AuthNetwork || ae.Kind == AuthServerError
	}
	return false
}
