package secretbox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyFileName    = ".p1person.key"
	saltLength     = 16
	kdfIterations  = 100_000
	keyFilePerm    = 0o600
	keyFileEnvVar  = "P1PERSON_KEY_FILE"
	configDirEnv   = "P1PERSON_CONFIG_DIR"
	configDirLocal = ".p1person"
)

// defaultKeyFilePath resuelve dónde vive el archivo de clave.
// P1PERSON_KEY_FILE gana; si no, ~/.p1person/.p1person.key.
func defaultKeyFilePath() string {
	if p := os.Getenv(keyFileEnvVar); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), keyFileName)
}

// ConfigDir retorna el directorio de configuración de la herramienta.
// P1PERSON_CONFIG_DIR gana; si no, ~/.p1person (fallback al cwd si no hay home).
func ConfigDir() string {
	if d := os.Getenv(configDirEnv); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirLocal
	}
	return filepath.Join(home, configDirLocal)
}

// loadOrCreateKeyFile lee la clave del archivo, o la genera si no existe.
//
// Formato del archivo: salt (16 bytes) || key (32 bytes). La clave se deriva
// con PBKDF2-SHA256 (100k iteraciones) de usuario+hostname más el salt random,
// así el archivo no es portable entre máquinas/cuentas tal cual.
func loadOrCreateKeyFile(path string) ([]byte, error) {
	if b, err := os.ReadFile(path); err == nil {
		if len(b) != saltLength+requiredKeyLength {
			return nil, fmt.Errorf("archivo de clave corrupto: %d bytes (esperado %d)", len(b), saltLength+requiredKeyLength)
		}
		return b[saltLength:], nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt random: %w", err)
	}

	key := pbkdf2.Key(machineMaterial(), salt, kdfIterations, requiredKeyLength, sha256.New)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(salt, key...), keyFilePerm); err != nil {
		return nil, fmt.Errorf("escribir %s: %w", path, err)
	}
	// Por si el umask subió los permisos
	_ = os.Chmod(path, keyFilePerm)

	return key, nil
}

// machineMaterial arma el material de derivación: usuario + hostname.
func machineMaterial() []byte {
	username := "p1person"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return []byte(username + host)
}
