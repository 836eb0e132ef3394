// p1person - herramienta de gestión de atributos custom inetOrgPerson en PingOne.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/p1person/internal/attributes"
	"github.com/dropDatabas3/p1person/internal/config"
	"github.com/dropDatabas3/p1person/internal/observability/logger"
	"github.com/dropDatabas3/p1person/internal/pingone"
)

const version = "0.2.0"

type cliFlags struct {
	prefix         string
	clear          bool
	remove         bool
	display        bool
	testConnection bool
	dryRun         bool
	newConnection  bool
	additional     bool
	yes            bool
	skynet         bool
	cyberdyne      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	root := &cobra.Command{
		Use:     "p1person",
		Short:   "Gestión de atributos custom inetOrgPerson en PingOne",
		Long:    usageLong,
		Version: version,
		Args:    cobra.NoArgs,
		// cobra ya imprime el error; evitamos el usage en fallas de runtime
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	root.Flags().StringVarP(&f.prefix, "prefix", "p", "", "antepone un string único a los nombres de atributos")
	root.Flags().BoolVarP(&f.clear, "clear", "c", false, "limpia los valores asignados de atributos existentes (no combinable con -r)")
	root.Flags().BoolVarP(&f.remove, "remove", "r", false, "borra el set de atributos (con -p borra los prefijados)")
	root.Flags().BoolVarP(&f.display, "display", "d", false, "muestra los atributos definidos en el environment (no combinable con -r)")
	root.Flags().BoolVarP(&f.testConnection, "test-connection", "t", false, "prueba la conexión configurada (solo standalone)")
	root.Flags().BoolVar(&f.dryRun, "dry-run", false, "simula la operación sin hacer cambios")
	root.Flags().BoolVarP(&f.newConnection, "new-connection", "n", false, "diálogo para crear/actualizar la conexión")
	root.Flags().BoolVarP(&f.additional, "additional-attributes", "a", false, "usa la lista de atributos adicionales de la configuración")
	root.Flags().BoolVarP(&f.yes, "yes", "y", false, "acepta todas las confirmaciones (usar con -r o -c)")
	root.Flags().BoolVar(&f.skynet, "Skynet", false, "")
	root.Flags().BoolVar(&f.cyberdyne, "Cyberdyne", false, "")
	_ = root.Flags().MarkHidden("Skynet")
	_ = root.Flags().MarkHidden("Cyberdyne")

	return root
}

// validateFlags chequea las combinaciones inválidas antes de tocar nada.
func validateFlags(f cliFlags) error {
	if f.testConnection {
		if f.prefix != "" || f.clear || f.remove || f.display || f.dryRun || f.newConnection || f.additional {
			return fmt.Errorf("-t/--test-connection no se combina con otros argumentos")
		}
	}
	if f.clear && f.remove {
		return fmt.Errorf("-c/--clear no se combina con -r/--remove")
	}
	if f.display && f.remove {
		return fmt.Errorf("-d/--display no se combina con -r/--remove")
	}
	return nil
}

// modeFor traduce los flags al modo del reconciliador. Default: create.
func modeFor(f cliFlags) attributes.Mode {
	switch {
	case f.display:
		return attributes.ModeDisplay
	case f.remove:
		return attributes.ModeRemove
	case f.clear:
		return attributes.ModeClear
	default:
		return attributes.ModeCreate
	}
}

func run(ctx context.Context, f cliFlags) error {
	// .env opcional (P1PERSON_MASTER_KEY, overrides de conexión, etc.)
	_ = godotenv.Load()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateFlags(f); err != nil {
		return err
	}

	// Setup de conexión nueva: corre el diálogo y ofrece probar.
	if f.newConnection {
		initLogger(nil)
		defer logger.Sync()
		if err := runSetup(os.Stdin); err != nil {
			return err
		}
		fmt.Println("Configuración de conexión guardada.")
		offerConnectionTest(ctx, os.Stdin)
		return nil
	}

	if !config.Exists() {
		fmt.Println("No se encontró configuración. Iniciando setup de conexión...")
		initLogger(nil)
		defer logger.Sync()
		if err := runSetup(os.Stdin); err != nil {
			return err
		}
		offerConnectionTest(ctx, os.Stdin)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)
	defer logger.Sync()

	conn, err := cfg.Resolve()
	if err != nil {
		return err
	}
	client := pingone.NewClient(conn)
	tokens := pingone.NewTokenCache()

	// -t: test de conexión standalone.
	if f.testConnection {
		fmt.Printf("Probando conexión al environment PingOne: %s...\n", conn.FriendlyName)
		result := client.TestConnection(ctx)
		if result.OK() {
			fmt.Printf("✓ Conexión exitosa: %s\n", result.Detail)
			return nil
		}
		fmt.Printf("✗ Conexión fallida (%s): %s\n", result.Status, result.Detail)
		if reconfigureAndTest(ctx, os.Stdin) {
			fmt.Println("\n✓ Conexión exitosa. Volvé a correr el comando.")
			return nil
		}
		return fmt.Errorf("test de conexión fallido")
	}

	// Test de conexión previo a cualquier operación.
	result := client.TestConnection(ctx)
	if !result.OK() {
		fmt.Printf("✗ Conexión fallida (%s): %s\n", result.Status, result.Detail)
		if reconfigureAndTest(ctx, os.Stdin) {
			fmt.Println("\nConfiguración actualizada. Volvé a correr el comando.")
			return nil
		}
		return fmt.Errorf("test de conexión fallido")
	}

	// Set de atributos a reconciliar.
	var defs []attributes.Definition
	if f.additional {
		for _, a := range cfg.AdditionalAttributeList() {
			defs = append(defs, attributes.Definition{Name: a.Name, Description: a.Description})
		}
		if len(defs) == 0 {
			return fmt.Errorf("no hay atributos adicionales definidos en %s", config.Path())
		}
	} else {
		defs = attributes.DefaultDefinitions()
	}

	mode := modeFor(f)

	if attributes.RequiresConfirmation(mode, f.dryRun, f.yes) {
		if !confirmOperation(os.Stdin, mode, len(attributes.Sanitize(defs)), f.additional) {
			fmt.Println("\nOperación cancelada.")
			return nil
		}
	}

	rec := attributes.NewReconciler(client, tokens, defs, f.prefix, f.dryRun)
	runCtx := logger.ToContext(ctx, logger.Named("run").With(logger.FriendlyName(conn.FriendlyName)))
	summary, err := rec.Run(runCtx, mode)
	if err != nil {
		return err
	}

	renderSummary(os.Stdout, conn.FriendlyName, summary)

	// Flags ocultos: crean los usuarios de fixture cuando los atributos existen.
	if mode == attributes.ModeCreate && !f.dryRun {
		if f.skynet {
			createFixtureUser(ctx, client, tokens, skynetUser())
		}
		if f.cyberdyne {
			createFixtureUser(ctx, client, tokens, cyberdyneUser())
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d atributo(s) fallaron", summary.Count(attributes.OutcomeFailed))
	}
	return nil
}

// initLogger inicializa el singleton con los niveles de la config (si hay).
func initLogger(cfg *config.Config) {
	lc := logger.Config{
		Env:         os.Getenv("APP_ENV"),
		Level:       os.Getenv("P1PERSON_LOG_LEVEL"),
		ServiceName: "p1person",
		Version:     version,
	}
	if cfg != nil {
		lc.Env = cfg.Log.Env
		lc.Level = cfg.Log.Level
	}
	logger.Init(lc)
}

const usageLong = `p1person - gestión de atributos custom inetOrgPerson en PingOne

Crea, muestra, limpia o borra el set default de atributos inetOrgPerson
(más una lista adicional opcional) en el schema User del environment.
Los atributos 'title' y 'preferredLanguage' están permanentemente
excluidos: nunca se agregan ni se borran.

Ejemplos:
  p1person                 crea los atributos default
  p1person -p MiPrefijo    crea los atributos con prefijo
  p1person -d              muestra los atributos default existentes
  p1person -d -a           muestra los atributos adicionales existentes
  p1person -r              borra atributos (pide confirmación)
  p1person -r -y           borra atributos sin confirmación
  p1person -c -a           limpia valores de los atributos adicionales
  p1person -t              prueba la conexión
  p1person -n              configura una conexión nueva
  p1person --dry-run       simula sin hacer cambios`
