// Package pingone implementa el cliente de la PingOne Management API:
// ciclo de vida del token OAuth2 (client credentials), el primitivo de
// requests autenticados y los endpoints de schema attributes.
package pingone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/p1person/internal/observability/logger"
	"github.com/dropDatabas3/p1person/internal/util"
)

// requestTimeout es el timeout fijo por llamada. No hay retries automáticos:
// esa decisión es del reconciler (una sola re-autenticación ante 401, nada más).
const requestTimeout = 30 * time.Second

// Client habla con la Management API de un environment.
type Client struct {
	conn  Connection
	httpc *http.Client
	log   *zap.Logger
	now   func() time.Time
}

// Option configura el cliente (tests usan WithHTTPClient/WithNow).
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests, proxies corporativos).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithNow reemplaza la fuente de tiempo (tests de expiry).
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient crea un cliente para la conexión dada.
func NewClient(conn Connection, opts ...Option) *Client {
	c := &Client{
		conn:  conn,
		httpc: &http.Client{Timeout: requestTimeout},
		log:   logger.Named("pingone").With(logger.Environment(conn.EnvironmentID)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conn expone la conexión del cliente (para el token cache del caller).
func (c *Client) Conn() Connection { return c.conn }

// =================================================================================
// AUTENTICACIÓN
// =================================================================================

// tokenResponse es el body del endpoint /as/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// oauthErrorResponse es el body de error estándar OAuth2.
type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticate hace el intercambio client_credentials contra el environment.
// Toda falla vuelve como *AuthError clasificado; nunca un error crudo.
func (c *Client) Authenticate(ctx context.Context) (Token, error) {
	if err := c.conn.Validate(); err != nil {
		return Token{}, newAuthError(AuthInvalidCredentials, 0, "conexión incompleta", err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.conn.ClientID)
	form.Set("client_secret", c.conn.ClientSecret)

	tokenURL := c.conn.TokenURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, newAuthError(AuthNetwork, 0, "armar request de token", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := c.now()
	resp, err := c.httpc.Do(req)
	elapsed := c.now().Sub(start)
	if err != nil {
		c.logCall(http.MethodPost, tokenURL, 0, elapsed, err)
		return Token{}, newAuthError(AuthNetwork, 0, "error de red durante autenticación", err)
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		c.logCall(http.MethodPost, tokenURL, resp.StatusCode, elapsed, err)
		return Token{}, newAuthError(AuthNetwork, resp.StatusCode, "leer respuesta de token", err)
	}

	if resp.StatusCode != http.StatusOK {
		authErr := c.classifyAuthFailure(resp.StatusCode, body.Bytes())
		c.logCall(http.MethodPost, tokenURL, resp.StatusCode, elapsed, authErr)
		return Token{}, authErr
	}

	var tr tokenResponse
	if err := json.Unmarshal(body.Bytes(), &tr); err != nil || tr.AccessToken == "" {
		if err == nil {
			err = errors.New("respuesta sin access_token")
		}
		c.logCall(http.MethodPost, tokenURL, resp.StatusCode, elapsed, err)
		return Token{}, newAuthError(AuthMalformedResponse, resp.StatusCode, "respuesta de token inválida", err)
	}
	c.logCall(http.MethodPost, tokenURL, resp.StatusCode, elapsed, nil)

	expiresIn := tr.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	tok := Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Scope:       tr.Scope,
		ExpiresAt:   c.now().Add(time.Duration(expiresIn) * time.Second),
	}

	c.log.Info("access token obtenido",
		zap.String("token_type", tok.TokenType),
		zap.String("scopes", tok.Scope),
	)
	c.log.Debug("token preview",
		zap.String("preview", tok.Preview()),
		zap.Int("length", len(tok.AccessToken)),
	)
	if !tok.LooksLikeJWT() {
		c.log.Warn("el access token no tiene forma de JWT",
			zap.Int("dots", strings.Count(tok.AccessToken, ".")))
	} else if claims, ok := tok.Claims(); ok {
		// Parse sin verificar, solo para debug
		c.log.Debug("token claims", logger.Any("env", claims["env"]), logger.Any("iss", claims["iss"]))
	}

	return tok, nil
}

// classifyAuthFailure mapea una respuesta no-200 del token endpoint a AuthError.
func (c *Client) classifyAuthFailure(status int, body []byte) *AuthError {
	msg := fmt.Sprintf("autenticación falló: %d", status)
	var oe oauthErrorResponse
	if err := json.Unmarshal(body, &oe); err == nil && (oe.Error != "" || oe.ErrorDescription != "") {
		detail := oe.ErrorDescription
		if detail == "" {
			detail = oe.Error
		}
		msg += " - " + detail
	} else if len(body) > 0 {
		msg += " - " + truncate(string(body), 200)
	}

	switch {
	case status >= 500:
		return newAuthError(AuthServerError, status, msg, nil)
	case status >= 400:
		return newAuthError(AuthInvalidCredentials, status, msg, nil)
	default:
		return newAuthError(AuthMalformedResponse, status, msg, nil)
	}
}

// EnsureToken es el único punto de refresh: devuelve cached si sigue válido
// (expiry menos el margen de 60s), o autentica de nuevo. Los callers nunca
// llaman Authenticate directo en el camino caliente.
func (c *Client) EnsureToken(ctx context.Context, cached Token) (Token, error) {
	if cached.Valid(c.now()) {
		return cached, nil
	}
	return c.Authenticate(ctx)
}

// =================================================================================
// REQUEST PRIMITIVO
// =================================================================================

// apiErrorResponse es la forma de error de la Management API.
type apiErrorResponse struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Target  string `json:"target"`
	} `json:"details"`
}

// Request ejecuta una llamada autenticada. path es relativo a la base de la
// API (ej: "/environments/{id}/schemas"). body se serializa como JSON si no
// es nil. Fallas de transporte y status >= 400 vuelven como *RequestError;
// no hay retry automático acá.
func (c *Client) Request(ctx context.Context, method, path string, tok Token, body any) (int, []byte, error) {
	fullURL := c.conn.baseURL() + path

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &RequestError{Kind: ReqMalformedResponse, Method: method, Path: path, Message: "serializar body", Err: err}
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return 0, nil, &RequestError{Kind: ReqNetwork, Method: method, Path: path, Message: "armar request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.httpc.Do(req)
	elapsed := c.now().Sub(start)
	if err != nil {
		kind := ReqNetwork
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			kind = ReqTimeout
		}
		reqErr := &RequestError{Kind: kind, Method: method, Path: path, Message: "error de transporte", Err: err}
		c.logCall(method, fullURL, 0, elapsed, reqErr)
		return 0, nil, reqErr
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		reqErr := &RequestError{Kind: ReqNetwork, Method: method, Path: path, Status: resp.StatusCode, Message: "leer respuesta", Err: err}
		c.logCall(method, fullURL, resp.StatusCode, elapsed, reqErr)
		return resp.StatusCode, nil, reqErr
	}

	if resp.StatusCode >= 400 {
		reqErr := c.classifyRequestFailure(method, path, resp.StatusCode, buf.Bytes())
		c.logCall(method, fullURL, resp.StatusCode, elapsed, reqErr)
		return resp.StatusCode, buf.Bytes(), reqErr
	}

	c.logCall(method, fullURL, resp.StatusCode, elapsed, nil)
	return resp.StatusCode, buf.Bytes(), nil
}

// classifyRequestFailure arma el RequestError de un status >= 400.
func (c *Client) classifyRequestFailure(method, path string, status int, body []byte) *RequestError {
	reqErr := &RequestError{
		Kind:   classifyStatus(status),
		Method: method,
		Path:   path,
		Status: status,
	}

	var ae apiErrorResponse
	if err := json.Unmarshal(body, &ae); err == nil && ae.Message != "" {
		reqErr.Message = ae.Message
		if len(ae.Details) > 0 && ae.Details[0].Message != "" {
			reqErr.Detail = ae.Details[0].Message
		}
	} else if len(body) > 0 {
		reqErr.Message = truncate(string(body), 200)
	}

	// 403: casi siempre es el Worker App sin roles suficientes
	if status == http.StatusForbidden {
		reqErr.Detail = fmt.Sprintf(
			"el Worker App (client id %s) necesita el rol Environment Admin o Identity Data Admin",
			util.MaskID(c.conn.ClientID))
	}

	return reqErr
}

// logCall registra cada llamada HTTP, exitosa o no, con un call_id propio.
func (c *Client) logCall(method, callURL string, status int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		logger.CallID(uuid.NewString()),
		logger.Method(method),
		logger.URL(callURL),
		logger.Status(status),
		logger.DurationMs(elapsed.Milliseconds()),
	}
	if err != nil {
		fields = append(fields, logger.Err(err))
		c.log.Error("api call failed", fields...)
		return
	}
	c.log.Info("api call", fields...)
}

// =================================================================================
// TEST DE CONEXIÓN
// =================================================================================

// ConnectionTestStatus es el tri-estado del test de conexión.
type ConnectionTestStatus string

const (
	TestSuccess     ConnectionTestStatus = "success"
	TestAuthFailed  ConnectionTestStatus = "auth-failed"
	TestUnreachable ConnectionTestStatus = "environment-unreachable"
)

// ConnectionTestResult es el resultado legible del test de conexión.
type ConnectionTestResult struct {
	Status          ConnectionTestStatus
	Detail          string
	EnvironmentName string
	Err             error
}

// OK indica éxito.
func (r ConnectionTestResult) OK() bool { return r.Status == TestSuccess }

// TestConnection autentica y consulta el detalle del environment. Es
// idempotente y seguro de repetir (lo usa -t y el loop post-setup).
func (c *Client) TestConnection(ctx context.Context) ConnectionTestResult {
	tok, err := c.Authenticate(ctx)
	if err != nil {
		result := ConnectionTestResult{Detail: err.Error(), Err: err}
		var ae *AuthError
		if errors.As(err, &ae) && (ae.Kind == AuthNetwork || ae.Kind == AuthServerError) {
			result.Status = TestUnreachable
		} else {
			result.Status = TestAuthFailed
		}
		c.logConnectionTest(false)
		return result
	}

	env, err := c.GetEnvironment(ctx, tok)
	if err != nil {
		status := TestUnreachable
		if IsUnauthorized(err) {
			status = TestAuthFailed
		}
		c.logConnectionTest(false)
		return ConnectionTestResult{Status: status, Detail: err.Error(), Err: err}
	}

	c.logConnectionTest(true)
	return ConnectionTestResult{
		Status:          TestSuccess,
		Detail:          fmt.Sprintf("conectado al environment: %s", env.Name),
		EnvironmentName: env.Name,
	}
}

// logConnectionTest emite el evento estructurado de test de conexión.
func (c *Client) logConnectionTest(success bool) {
	c.log.Info("connection test",
		logger.FriendlyName(c.conn.FriendlyName),
		logger.Success(success),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
