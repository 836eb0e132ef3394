// Package config maneja p1person.yaml: carga, persistencia y resolución de la
// conexión (con el client secret cifrado en reposo via secretbox).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/p1person/internal/pingone"
	"github.com/dropDatabas3/p1person/internal/security/secretbox"
	"github.com/dropDatabas3/p1person/internal/util/atomicwrite"
)

const configFileName = "p1person.yaml"

// Config es el archivo de configuración completo.
type Config struct {
	Connection struct {
		FriendlyName  string `yaml:"friendly_name"`
		EnvironmentID string `yaml:"environment_id"`
		ClientID      string `yaml:"client_id"`
		// Secret cifrado con secretbox: base64(nonce)|base64(ciphertext).
		// Nunca se guarda en claro.
		ClientSecretEncrypted string `yaml:"client_secret_encrypted"`
		// NA | EU | ASIA | CA (default NA)
		Region string `yaml:"region"`
	} `yaml:"connection"`

	Log struct {
		// dev | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Atributos extra (flag -a): nombre -> descripción.
	AdditionalAttributes map[string]string `yaml:"additional_attributes,omitempty"`
}

// Path retorna la ruta del archivo de configuración.
func Path() string {
	return filepath.Join(secretbox.ConfigDir(), configFileName)
}

// Exists indica si ya hay una configuración guardada.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load lee y parsea p1person.yaml, aplicando overrides de entorno.
func Load() (*Config, error) {
	b, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no hay configuración en %s (correr con -n para crearla)", Path())
		}
		return nil, fmt.Errorf("leer %s: %w", Path(), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsear %s: %w", Path(), err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// Save persiste la configuración de forma atómica con permisos restrictivos.
func Save(cfg *Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serializar config: %w", err)
	}
	if err := atomicwrite.AtomicWriteFile(Path(), b, 0o600); err != nil {
		return fmt.Errorf("guardar %s: %w", Path(), err)
	}
	return nil
}

// applyEnvOverrides pisa campos puntuales desde el entorno (útil en CI).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("P1PERSON_ENVIRONMENT_ID"); v != "" {
		c.Connection.EnvironmentID = v
	}
	if v := os.Getenv("P1PERSON_CLIENT_ID"); v != "" {
		c.Connection.ClientID = v
	}
	if v := os.Getenv("P1PERSON_REGION"); v != "" {
		c.Connection.Region = v
	}
	if v := os.Getenv("P1PERSON_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Log.Env = v
	}
}

func (c *Config) applyDefaults() {
	if c.Connection.Region == "" {
		c.Connection.Region = pingone.RegionNA
	}
	if c.Log.Env == "" {
		c.Log.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// SetClientSecret cifra y guarda el secret en el struct (no persiste).
func (c *Config) SetClientSecret(plain string) error {
	enc, err := secretbox.Encrypt(plain)
	if err != nil {
		return fmt.Errorf("cifrar client secret: %w", err)
	}
	c.Connection.ClientSecretEncrypted = enc
	return nil
}

// Resolve descifra el secret y arma la conexión validada que consume el core.
// El secret en claro vive sólo en el valor retornado, nunca en el Config.
func (c *Config) Resolve() (pingone.Connection, error) {
	missing := c.missingFields()
	if len(missing) > 0 {
		return pingone.Connection{}, fmt.Errorf("configuración incompleta, faltan: %s", strings.Join(missing, ", "))
	}

	// P1PERSON_CLIENT_SECRET permite inyectar el secret sin tocar el archivo.
	secret := os.Getenv("P1PERSON_CLIENT_SECRET")
	if secret == "" {
		var err error
		secret, err = secretbox.Decrypt(c.Connection.ClientSecretEncrypted)
		if err != nil {
			return pingone.Connection{}, fmt.Errorf("descifrar client secret: %w", err)
		}
	}

	conn := pingone.Connection{
		FriendlyName:  c.Connection.FriendlyName,
		EnvironmentID: c.Connection.EnvironmentID,
		ClientID:      c.Connection.ClientID,
		ClientSecret:  secret,
		Region:        c.Connection.Region,
	}
	if err := conn.Validate(); err != nil {
		return pingone.Connection{}, err
	}
	return conn, nil
}

// missingFields lista los campos requeridos vacíos.
func (c *Config) missingFields() []string {
	var missing []string
	if c.Connection.FriendlyName == "" {
		missing = append(missing, "friendly_name")
	}
	if c.Connection.EnvironmentID == "" {
		missing = append(missing, "environment_id")
	}
	if c.Connection.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.Connection.ClientSecretEncrypted == "" && os.Getenv("P1PERSON_CLIENT_SECRET") == "" {
		missing = append(missing, "client_secret_encrypted")
	}
	return missing
}

// AdditionalAttributeList retorna los atributos extra como lista ordenada por
// nombre. El map de YAML no preserva orden de declaración, así que el orden
// alfabético hace las corridas deterministas.
func (c *Config) AdditionalAttributeList() []AdditionalAttribute {
	if len(c.AdditionalAttributes) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.AdditionalAttributes))
	for name := range c.AdditionalAttributes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]AdditionalAttribute, 0, len(names))
	for _, name := range names {
		out = append(out, AdditionalAttribute{Name: name, Description: c.AdditionalAttributes[name]})
	}
	return out
}

// AdditionalAttribute es un atributo definido por el usuario en el YAML.
type AdditionalAttribute struct {
	Name        string
	Description string
}
