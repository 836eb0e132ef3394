// Package util tiene helpers chicos compartidos entre el CLI y el cliente.
package util

import "strings"

// MaskID oculta el medio de un identificador opaco (client id, environment id)
// dejando visible lo justo para reconocerlo en prompts y mensajes de error.
func MaskID(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return s[:1] + "…"
	default:
		return s[:4] + "…" + s[len(s)-4:]
	}
}

// MaskSecret nunca muestra el valor, solo que está presente.
func MaskSecret(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "********"
}
