package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dropDatabas3/p1person/internal/attributes"
	"github.com/dropDatabas3/p1person/internal/config"
	"github.com/dropDatabas3/p1person/internal/observability/logger"
	"github.com/dropDatabas3/p1person/internal/pingone"
	"github.com/dropDatabas3/p1person/internal/util"
)

// maxReconfigureAttempts acota el loop de reconfigurar-y-probar.
const maxReconfigureAttempts = 3

// runSetup corre el diálogo interactivo de conexión nueva y persiste la
// configuración con el secret cifrado.
func runSetup(in io.Reader) error {
	fmt.Println("\n=== Setup de conexión PingOne ===")
	fmt.Println()

	reader := bufio.NewReader(in)

	var cfg *config.Config
	if config.Exists() {
		// Setup sobre config existente: preserva atributos adicionales y log,
		// y muestra los valores actuales (enmascarados) como referencia.
		if loaded, err := config.Load(); err == nil {
			cfg = loaded
			fmt.Printf("Conexión actual: %s (environment %s, client %s)\n\n",
				cfg.Connection.FriendlyName,
				util.MaskID(cfg.Connection.EnvironmentID),
				util.MaskID(cfg.Connection.ClientID))
		}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	friendly, err := promptLine(reader, "Friendly Name: ")
	if err != nil {
		return err
	}
	envID, err := promptLine(reader, "Environment ID: ")
	if err != nil {
		return err
	}
	clientID, err := promptLine(reader, "Client ID: ")
	if err != nil {
		return err
	}
	secret, err := promptLine(reader, "Client Secret: ")
	if err != nil {
		return err
	}
	region, err := promptLine(reader, "Región [NA/EU/ASIA/CA] (default NA): ")
	if err != nil {
		return err
	}
	if region == "" {
		region = pingone.RegionNA
	}

	if friendly == "" || envID == "" || clientID == "" || secret == "" {
		return fmt.Errorf("todos los campos son obligatorios")
	}

	cfg.Connection.FriendlyName = friendly
	cfg.Connection.EnvironmentID = envID
	cfg.Connection.ClientID = clientID
	cfg.Connection.Region = strings.ToUpper(region)
	if err := cfg.SetClientSecret(secret); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("\nConfiguración guardada en %s\n", config.Path())
	return nil
}

// offerConnectionTest pregunta si probar la conexión recién configurada.
func offerConnectionTest(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)
	answer, err := promptLine(reader, "\n¿Probar la conexión ahora? (yes/no): ")
	if err != nil || !isYes(answer) {
		return
	}
	if testConfiguredConnection(ctx) {
		fmt.Println("✓ Conexión exitosa.")
	}
}

// reconfigureAndTest ofrece rehacer el setup y reprobar, acotado a unos
// pocos intentos (nunca un loop sin límite).
func reconfigureAndTest(ctx context.Context, in io.Reader) bool {
	reader := bufio.NewReader(in)
	for attempt := 0; attempt < maxReconfigureAttempts; attempt++ {
		answer, err := promptLine(reader, "\n¿Actualizar la configuración de conexión y reintentar? (yes/no): ")
		if err != nil || !isYes(answer) {
			return false
		}
		if err := runSetup(in); err != nil {
			fmt.Printf("✗ Setup falló: %v\n", err)
			continue
		}
		if testConfiguredConnection(ctx) {
			return true
		}
	}
	return false
}

// testConfiguredConnection recarga la config y corre un test de conexión.
func testConfiguredConnection(ctx context.Context) bool {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return false
	}
	conn, err := cfg.Resolve()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return false
	}
	result := pingone.NewClient(conn).TestConnection(ctx)
	if !result.OK() {
		fmt.Printf("✗ Conexión fallida (%s): %s\n", result.Status, result.Detail)
		return false
	}
	return true
}

// confirmOperation pide confirmación para clear/remove (el predicado vive en
// el core; el prompt acá).
func confirmOperation(in io.Reader, mode attributes.Mode, count int, additional bool) bool {
	kind := "default"
	if additional {
		kind = "adicionales"
	}
	verb := "borrar"
	warning := "Esta acción no se puede deshacer."
	if mode == attributes.ModeClear {
		verb = "limpiar los valores de"
		warning = "Esto elimina los datos de estos atributos para todos los usuarios."
	}
	fmt.Printf("\n⚠️  ATENCIÓN: estás por %s %d atributo(s) %s.\n%s\n\n", verb, count, kind, warning)

	reader := bufio.NewReader(in)
	answer, err := promptLine(reader, "¿Continuar? (yes/no): ")
	if err != nil {
		return false
	}
	return isYes(answer)
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isYes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "yes" || a == "y"
}

// =================================================================================
// FIXTURES (flags ocultos)
// =================================================================================

// createFixtureUser crea un usuario de demo en el environment.
func createFixtureUser(ctx context.Context, client *pingone.Client, tokens *pingone.TokenCache, user map[string]any) {
	conn := client.Conn()
	tok, err := client.EnsureToken(ctx, tokens.Get(conn))
	if err != nil {
		fmt.Printf("✗ No se pudo crear el usuario: %v\n", err)
		return
	}
	tokens.Put(conn, tok)

	created, err := client.CreateUser(ctx, tok, user)
	if err != nil {
		fmt.Printf("✗ No se pudo crear el usuario: %v\n", err)
		return
	}
	logger.S().Infow("fixture user created", "username", created["username"], "id", created["id"])
	fmt.Printf("✓ Usuario creado: %v (id %v)\n", created["username"], created["id"])
}

func skynetUser() map[string]any {
	return map[string]any{
		"username": "sconnor",
		"email":    "sconnor@theresistance.org",
		"name":     map[string]any{"given": "Sarah", "family": "Connor"},
		"lifecycle": map[string]any{
			"status": "ACCOUNT_OK",
		},
		"title":             "Guerilla Fighter",
		"description":       "Mother of the Resistance.",
		"telephoneNumber":   "555-9175",
		"homePhone":         "5559175",
		"mobile":            "555-1776",
		"homePostalAddress": "11844 Hamlin St, Los Angeles, CA",
		"employeeType":      "Resistance Fighter",
	}
}

func cyberdyneUser() map[string]any {
	return map[string]any{
		"username": "mdyson",
		"email":    "mdyson@cyberdyne.com",
		"name":     map[string]any{"given": "Miles", "family": "Dyson"},
		"lifecycle": map[string]any{
			"status": "ACCOUNT_OK",
		},
		"title":             "Director of Special Projects",
		"description":       "Lead Architect of the Neural-Net Processor.",
		"telephoneNumber":   "555-1995",
		"homePhone":         "555-1995",
		"mobile":            "555-1984",
		"homePostalAddress": "30065 Pacific Coast Highway, Malibu, CA",
		"employeeNumber":    "00001",
		"employeeType":      "Executive / Scientist",
	}
}
