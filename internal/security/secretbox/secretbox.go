// Package secretbox cifra el client secret de la conexión en reposo (AES-256-GCM).
//
// La clave maestra se resuelve en este orden:
//  1. P1PERSON_MASTER_KEY (base64, 32 bytes), para entornos CI/headless.
//  2. Archivo de clave .p1person.key junto a la configuración, generado
//     on-demand con PBKDF2 (ver keyfile.go).
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	masterKeyEnvVar   = "P1PERSON_MASTER_KEY"
	nonceSizeGCM      = 12  // AES-GCM nonce size recomendado (96 bits)
	requiredKeyLength = 32  // 32 bytes => AES-256
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

var (
	masterKey     []byte
	masterKeyOnce sync.Once
	loadErr       error
	mu            sync.RWMutex
)

// ensureLoaded resuelve la clave maestra una sola vez: primero el env var,
// después el archivo de clave (creándolo si no existe).
func ensureLoaded() error {
	masterKeyOnce.Do(func() {
		var k []byte

		if kb64 := strings.TrimSpace(os.Getenv(masterKeyEnvVar)); kb64 != "" {
			b, err := base64.StdEncoding.DecodeString(kb64)
			if err != nil {
				loadErr = fmt.Errorf("decode %s: %w", masterKeyEnvVar, err)
				return
			}
			if len(b) != requiredKeyLength {
				loadErr = fmt.Errorf("%s debe decodificar a %d bytes, obtuvo %d", masterKeyEnvVar, requiredKeyLength, len(b))
				return
			}
			k = b
		} else {
			b, err := loadOrCreateKeyFile(defaultKeyFilePath())
			if err != nil {
				loadErr = fmt.Errorf("clave maestra: %w", err)
				return
			}
			k = b
		}

		mu.Lock()
		masterKey = make([]byte, len(k))
		copy(masterKey, k)
		mu.Unlock()
	})
	return loadErr
}

// IsReady expone si la clave está cargada (útil para diagnóstico de config).
func IsReady() bool {
	mu.RLock()
	defer mu.RUnlock()
	return len(masterKey) == requiredKeyLength
}

// Encrypt cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func Encrypt(plainText string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	aesgcm, err := newGCM(snapshotKey())
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}

	ct := aesgcm.Seal(nil, nonce, []byte(plainText), nil)

	nonceB64 := base64.StdEncoding.EncodeToString(nonce)
	ctB64 := base64.StdEncoding.EncodeToString(ct)
	return nonceB64 + sep + ctB64, nil
}

// Decrypt recibe base64(nonce)|base64(ciphertext) y devuelve el texto plano.
func Decrypt(cipherText string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	nonce, ct, err := splitCipherText(cipherText)
	if err != nil {
		return "", err
	}

	aesgcm, err := newGCM(snapshotKey())
	if err != nil {
		return "", err
	}

	pt, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}

// snapshotKey copia la clave bajo lock para no retener el RLock durante el cifrado.
func snapshotKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	key := make([]byte, len(masterKey))
	copy(key, masterKey)
	return key
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return aesgcm, nil
}

func splitCipherText(cipherText string) (nonce, ct []byte, err error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return nil, nil, errors.New("formato inválido: esperado base64(nonce)|base64(ciphertext)")
	}
	nonce, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSizeGCM {
		return nil, nil, fmt.Errorf("nonce inválido: esperado %d bytes, obtuvo %d", nonceSizeGCM, len(nonce))
	}
	return nonce, ct, nil
}

// --- Helpers para tests ---

// UnsafeResetForTests borra estado interno. Usar sólo en tests.
func UnsafeResetForTests() {
	mu.Lock()
	masterKey = nil
	mu.Unlock()
	masterKeyOnce = sync.Once{}
	loadErr = nil
}

// UnsafeSetMasterKeyForTests permite setear una clave cruda (32 bytes) en tests.
func UnsafeSetMasterKeyForTests(k []byte) error {
	if len(k) != requiredKeyLength {
		return fmt.Errorf("clave inválida para test: se requieren %d bytes", requiredKeyLength)
	}
	UnsafeResetForTests()
	mu.Lock()
	masterKey = make([]byte, len(k))
	copy(masterKey, k)
	mu.Unlock()
	// Consumir el Once para que ensureLoaded no pise la clave inyectada.
	masterKeyOnce.Do(func() {})
	return nil
}
