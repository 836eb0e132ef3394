package pingone

import (
	"errors"
	"fmt"
	"strings"
)

// Regiones soportadas de PingOne.
const (
	RegionNA   = "NA"
	RegionEU   = "EU"
	RegionAsia = "ASIA"
	RegionCA   = "CA"
)

// apiBaseURLs mapea región -> base de la Management API.
var apiBaseURLs = map[string]string{
	RegionNA:   "https://api.pingone.com/v1",
	RegionEU:   "https://api.pingone.eu/v1",
	RegionAsia: "https://api.pingone.asia/v1",
	RegionCA:   "https://api.pingone.ca/v1",
}

// Connection es la configuración resuelta que consume el cliente.
// El secret ya viene descifrado; este valor nunca se serializa.
type Connection struct {
	FriendlyName  string
	EnvironmentID string
	ClientID      string
	ClientSecret  string
	Region        string

	// BaseURL pisa la URL derivada de Region. Usado en tests y para
	// apuntar a entornos no productivos.
	BaseURL string
}

// Validate chequea los campos que el cliente necesita antes de cualquier llamada.
func (c Connection) Validate() error {
	var missing []string
	if c.EnvironmentID == "" {
		missing = append(missing, "environment id")
	}
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.FriendlyName == "" {
		missing = append(missing, "friendly name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("conexión inválida, falta: %s", strings.Join(missing, ", "))
	}
	if c.BaseURL == "" {
		if _, ok := apiBaseURLs[strings.ToUpper(c.Region)]; c.Region != "" && !ok {
			return fmt.Errorf("región desconocida %q (válidas: NA, EU, ASIA, CA)", c.Region)
		}
	}
	return nil
}

// baseURL resuelve la base de la API: override explícito, región, o NA.
func (c Connection) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if u, ok := apiBaseURLs[strings.ToUpper(c.Region)]; ok {
		return u
	}
	return apiBaseURLs[RegionNA]
}

// TokenURL es el endpoint OAuth2 de client credentials del environment.
func (c Connection) TokenURL() string {
	return fmt.Sprintf("%s/environments/%s/as/token", c.baseURL(), c.EnvironmentID)
}

// EnvironmentURL es el endpoint de detalle del environment (test de conexión).
func (c Connection) EnvironmentURL() string {
	return fmt.Sprintf("%s/environments/%s", c.baseURL(), c.EnvironmentID)
}

// cacheKey identifica la conexión dentro del token cache.
func (c Connection) cacheKey() string {
	return c.EnvironmentID + "/" + c.ClientID
}

// ErrNoConnection se retorna cuando se intenta operar sin conexión resuelta.
var ErrNoConnection = errors.New("pingone: conexión no configurada")
