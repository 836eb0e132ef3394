package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/dropDatabas3/p1person/internal/security/secretbox"
)

// setupTestEnv aísla la config en un directorio temporal con una clave
// maestra fija por env var, para no tocar ~/.p1person de la máquina.
func setupTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("P1PERSON_CONFIG_DIR", dir)

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("generar clave de test: %v", err)
	}
	t.Setenv("P1PERSON_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))
	secretbox.UnsafeResetForTests()
	t.Cleanup(secretbox.UnsafeResetForTests)

	// Limpiar overrides que podrían filtrarse del entorno real.
	for _, k := range []string{
		"P1PERSON_ENVIRONMENT_ID", "P1PERSON_CLIENT_ID", "P1PERSON_REGION",
		"P1PERSON_CLIENT_SECRET", "P1PERSON_LOG_LEVEL", "APP_ENV",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func sampleConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Connection.FriendlyName = "Sandbox"
	cfg.Connection.EnvironmentID = "env-1"
	cfg.Connection.ClientID = "worker-1"
	cfg.Connection.Region = "EU"
	if err := cfg.SetClientSecret("super-secreto"); err != nil {
		t.Fatalf("SetClientSecret: %v", err)
	}
	return cfg
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	setupTestEnv(t)

	if Exists() {
		t.Fatalf("Exists = true en directorio limpio")
	}

	cfg := sampleConfig(t)
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatalf("Exists = false después de Save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Connection.FriendlyName != "Sandbox" ||
		loaded.Connection.EnvironmentID != "env-1" ||
		loaded.Connection.ClientID != "worker-1" ||
		loaded.Connection.Region != "EU" {
		t.Fatalf("config cargada no coincide: %+v", loaded.Connection)
	}

	// El secret viaja cifrado, jamás en claro en el archivo.
	raw, err := os.ReadFile(Path())
	if err != nil {
		t.Fatalf("leer archivo: %v", err)
	}
	if strings.Contains(string(raw), "super-secreto") {
		t.Fatalf("el secret quedó en claro en %s", Path())
	}
	if !strings.Contains(string(raw), "client_secret_encrypted") {
		t.Fatalf("falta el campo cifrado en el YAML")
	}

	// Permisos restrictivos.
	info, err := os.Stat(Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("permisos %o, esperaba 600", perm)
	}
}

func TestResolve_DecryptsSecret(t *testing.T) {
	setupTestEnv(t)

	cfg := sampleConfig(t)
	conn, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if conn.ClientSecret != "super-secreto" {
		t.Fatalf("secret resuelto %q", conn.ClientSecret)
	}
	if conn.Region != "EU" || conn.EnvironmentID != "env-1" {
		t.Fatalf("conexión resuelta: %+v", conn)
	}
}

func TestResolve_EnvSecretBypassesDecryption(t *testing.T) {
	setupTestEnv(t)

	cfg := sampleConfig(t)
	// Ciphertext corrupto: con el env var puesto no debería ni intentarse.
	cfg.Connection.ClientSecretEncrypted = "basura|basura"
	t.Setenv("P1PERSON_CLIENT_SECRET", "del-entorno")

	conn, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve con env var: %v", err)
	}
	if conn.ClientSecret != "del-entorno" {
		t.Fatalf("secret %q, esperaba el del entorno", conn.ClientSecret)
	}
}

func TestResolve_MissingFields(t *testing.T) {
	setupTestEnv(t)

	cfg := &Config{}
	cfg.Connection.FriendlyName = "x"
	_, err := cfg.Resolve()
	if err == nil {
		t.Fatalf("Resolve aceptó config incompleta")
	}
	for _, want := range []string{"environment_id", "client_id", "client_secret_encrypted"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("el error no menciona %s: %v", want, err)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setupTestEnv(t)

	if err := Save(sampleConfig(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("P1PERSON_ENVIRONMENT_ID", "env-override")
	t.Setenv("P1PERSON_REGION", "CA")
	t.Setenv("P1PERSON_LOG_LEVEL", "debug")

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Connection.EnvironmentID != "env-override" {
		t.Fatalf("override de environment no aplicó: %s", loaded.Connection.EnvironmentID)
	}
	if loaded.Connection.Region != "CA" {
		t.Fatalf("override de región no aplicó: %s", loaded.Connection.Region)
	}
	if loaded.Log.Level != "debug" {
		t.Fatalf("override de log level no aplicó: %s", loaded.Log.Level)
	}
	// ClientID sin override queda como estaba.
	if loaded.Connection.ClientID != "worker-1" {
		t.Fatalf("client id cambió sin override: %s", loaded.Connection.ClientID)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupTestEnv(t)

	cfg := sampleConfig(t)
	cfg.Connection.Region = ""
	cfg.Log.Env = ""
	cfg.Log.Level = ""
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Connection.Region != "NA" {
		t.Fatalf("default de región: %s", loaded.Connection.Region)
	}
	if loaded.Log.Env != "dev" || loaded.Log.Level != "info" {
		t.Fatalf("defaults de log: %+v", loaded.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	setupTestEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatalf("Load sin archivo debería fallar")
	}
	if !strings.Contains(err.Error(), "-n") {
		t.Fatalf("el error no sugiere correr el setup: %v", err)
	}
}

func TestAdditionalAttributeList_OrdenDeterminista(t *testing.T) {
	cfg := &Config{
		AdditionalAttributes: map[string]string{
			"zoneCode":   "Zona.",
			"badge":      "Credencial.",
			"costCenter": "Centro de costos.",
		},
	}
	got := cfg.AdditionalAttributeList()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	want := []string{"badge", "costCenter", "zoneCode"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("posición %d: %q, esperaba %q", i, got[i].Name, name)
		}
	}
	if got[1].Description != "Centro de costos." {
		t.Fatalf("descripción no acompaña al nombre: %+v", got[1])
	}

	empty := &Config{}
	if empty.AdditionalAttributeList() != nil {
		t.Fatalf("sin atributos adicionales debería retornar nil")
	}
}
