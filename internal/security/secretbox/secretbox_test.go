package secretbox

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	UnsafeResetForTests()

	// Clave de 32 bytes -> base64
	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(i + 1)
	}
	os.Setenv("P1PERSON_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))

	msg := "un-client-secret-muy-confidencial ✓"
	ct, err := Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if strings.Contains(ct, msg) {
		t.Fatalf("ciphertext contiene el plaintext")
	}
	pt, err := Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	UnsafeResetForTests()

	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(255 - i)
	}
	os.Setenv("P1PERSON_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))

	ct, err := Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected ct format")
	}
	// corromper un byte del ciphertext (base64 -> bytes -> flip -> base64)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) == 0 {
		t.Fatal("empty ct")
	}
	bs[0] ^= 0xFF
	tampered := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := Decrypt(tampered); err == nil {
		t.Fatalf("Decrypt aceptó ciphertext corrupto")
	}
}

func TestEncrypt_RejectsBadEnvKey(t *testing.T) {
	UnsafeResetForTests()
	os.Setenv("P1PERSON_MASTER_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

	if _, err := Encrypt("x"); err == nil {
		t.Fatalf("Encrypt aceptó clave de longitud inválida")
	}
	UnsafeResetForTests()
	os.Unsetenv("P1PERSON_MASTER_KEY")
}

func TestLoadOrCreateKeyFile_StableAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".p1person.key")

	k1, err := loadOrCreateKeyFile(path)
	if err != nil {
		t.Fatalf("primera carga err: %v", err)
	}
	if len(k1) != requiredKeyLength {
		t.Fatalf("clave de %d bytes, esperado %d", len(k1), requiredKeyLength)
	}

	k2, err := loadOrCreateKeyFile(path)
	if err != nil {
		t.Fatalf("segunda carga err: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("la clave cambió entre cargas")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != keyFilePerm {
		t.Fatalf("permisos %v, esperado %v", info.Mode().Perm(), os.FileMode(keyFilePerm))
	}
}

func TestLoadOrCreateKeyFile_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".p1person.key")
	if err := os.WriteFile(path, []byte("demasiado corto"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadOrCreateKeyFile(path); err == nil {
		t.Fatalf("aceptó archivo de clave corrupto")
	}
}
