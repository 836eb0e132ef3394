package attributes

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/p1person/internal/observability/logger"
	"github.com/dropDatabas3/p1person/internal/pingone"
)

// Mode es la operación pedida por el caller.
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeDisplay Mode = "display"
	ModeClear   Mode = "clear"
	ModeRemove  Mode = "remove"
)

// Outcome es el resultado por atributo.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeSkipped  Outcome = "skipped-existing"
	OutcomeCleared  Outcome = "cleared"
	OutcomeRemoved  Outcome = "removed"
	OutcomeFailed   Outcome = "failed"
	OutcomeFound    Outcome = "found"     // solo display
	OutcomeNotFound Outcome = "not-found" // solo display
)

// Result es el desenlace de un atributo en una corrida.
type Result struct {
	Name       string // nombre de la definición
	RemoteName string // prefix + nombre: así se busca y se crea
	Outcome    Outcome
	Detail     string
	Record     *pingone.AttributeRecord // presente cuando el remoto existía
	Err        error                    // *ReconcileError cuando Outcome == failed
	Elapsed    time.Duration
}

// Summary agrega los resultados de toda la corrida. Nunca se persiste.
type Summary struct {
	Mode    Mode
	DryRun  bool
	Prefix  string
	Results []Result
}

// Count cuenta resultados con el outcome dado.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// HasFailures indica si algún atributo falló (decide el exit code del caller).
func (s *Summary) HasFailures() bool { return s.Count(OutcomeFailed) > 0 }

// ReconcileError es la falla por atributo envolviendo el RequestError.
type ReconcileError struct {
	Attribute string
	Err       error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("atributo %s: %v", e.Attribute, e.Err)
}

func (e *ReconcileError) Unwrap() error { return e.Err }

// RequiresConfirmation indica si la operación necesita confirmación del
// usuario antes de ejecutarse. El prompt en sí vive afuera del core; esto es
// solo el predicado. Dry-run nunca confirma porque no muta nada.
func RequiresConfirmation(mode Mode, dryRun, autoConfirm bool) bool {
	if dryRun || autoConfirm {
		return false
	}
	return mode == ModeClear || mode == ModeRemove
}

// Reconciler aplica una operación sobre el set de atributos deseado.
// Ejecución secuencial y determinista: la API tiene rate limits y el set es
// chico, así que no hay procesamiento paralelo.
type Reconciler struct {
	client *pingone.Client
	tokens *pingone.TokenCache
	defs   []Definition
	prefix string
	dryRun bool
	log    *zap.Logger
}

// NewReconciler arma un reconciliador. defs se sanitiza acá: los nombres
// excluidos no entran nunca al plan.
func NewReconciler(client *pingone.Client, tokens *pingone.TokenCache, defs []Definition, prefix string, dryRun bool) *Reconciler {
	return &Reconciler{
		client: client,
		tokens: tokens,
		defs:   Sanitize(defs),
		prefix: prefix,
		dryRun: dryRun,
		log:    logger.Named("reconciler"),
	}
}

// Run ejecuta la corrida completa para el modo dado. Una falla por atributo
// no aborta el batch: queda registrada y se sigue con el próximo. Solo
// retorna error cuando ni siquiera se pudo descubrir el estado remoto.
func (r *Reconciler) Run(ctx context.Context, mode Mode) (*Summary, error) {
	summary := &Summary{Mode: mode, DryRun: r.dryRun, Prefix: r.prefix}

	// El caller puede inyectar un logger con campos de la corrida via contexto.
	runLog := logger.FromWithFields(ctx,
		logger.Mode(string(mode)),
		logger.DryRun(r.dryRun),
	)
	runLog.Info("run start", logger.Count(len(r.defs)))

	// Descubrimiento: un solo listado por corrida alimenta todo el batch.
	var schemaID string
	err := r.call(ctx, func(tok pingone.Token) error {
		var err error
		schemaID, err = r.client.UserSchemaID(ctx, tok)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("descubrir schema User: %w", err)
	}

	var records []pingone.AttributeRecord
	err = r.call(ctx, func(tok pingone.Token) error {
		var err error
		records, err = r.client.ListAttributes(ctx, tok, schemaID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listar atributos: %w", err)
	}

	lookup := make(map[string]pingone.AttributeRecord, len(records))
	for _, rec := range records {
		lookup[rec.Name] = rec
	}

	// Procesamiento en el orden declarado de las definiciones.
	for _, def := range r.defs {
		start := time.Now()
		res := r.apply(ctx, mode, schemaID, def, lookup)
		res.Elapsed = time.Since(start)

		r.log.Debug("attribute processed",
			logger.Attribute(res.RemoteName),
			logger.Outcome(string(res.Outcome)),
			logger.DurationMs(res.Elapsed.Milliseconds()),
		)
		summary.Results = append(summary.Results, res)
	}

	runLog.Info("run done",
		zap.Int("failed", summary.Count(OutcomeFailed)),
		zap.Int("total", len(summary.Results)),
	)
	return summary, nil
}

// apply resuelve un atributo según el modo. El lookup se actualiza con los
// creados para que el contrato de idempotencia valga aun con duplicados en
// la lista de entrada.
func (r *Reconciler) apply(ctx context.Context, mode Mode, schemaID string, def Definition, lookup map[string]pingone.AttributeRecord) Result {
	remoteName := r.prefix + def.Name
	res := Result{Name: def.Name, RemoteName: remoteName}
	existing, exists := lookup[remoteName]
	if exists {
		res.Record = &existing
	}

	switch mode {
	case ModeDisplay:
		// Nunca muta, ni siquiera fuera de dry-run.
		if exists {
			res.Outcome = OutcomeFound
		} else {
			res.Outcome = OutcomeNotFound
			res.Detail = "no existe en el environment"
		}
		return res

	case ModeCreate:
		if exists {
			res.Outcome = OutcomeSkipped
			res.Detail = fmt.Sprintf("ya existe (%s)", shortID(existing.ID))
			return res
		}
		if r.dryRun {
			res.Outcome = OutcomeCreated
			res.Detail = "crearía"
			return res
		}
		var created pingone.AttributeRecord
		err := r.call(ctx, func(tok pingone.Token) error {
			var err error
			created, err = r.client.CreateAttribute(ctx, tok, schemaID, remoteName, def.Description)
			return err
		})
		if err != nil {
			return r.failed(res, def, err)
		}
		lookup[remoteName] = created
		res.Record = &created
		res.Outcome = OutcomeCreated
		res.Detail = fmt.Sprintf("id %s", shortID(created.ID))
		return res

	case ModeClear:
		if !exists {
			res.Outcome = OutcomeSkipped
			res.Detail = "no existe, nada que limpiar"
			return res
		}
		if !existing.Enabled {
			res.Outcome = OutcomeSkipped
			res.Detail = "ya estaba deshabilitado"
			return res
		}
		if r.dryRun {
			res.Outcome = OutcomeCleared
			res.Detail = fmt.Sprintf("deshabilitaría (%s)", shortID(existing.ID))
			return res
		}
		err := r.call(ctx, func(tok pingone.Token) error {
			return r.client.SetAttributeEnabled(ctx, tok, existing.ID, false)
		})
		if err != nil {
			return r.failed(res, def, err)
		}
		existing.Enabled = false
		lookup[remoteName] = existing
		res.Outcome = OutcomeCleared
		res.Detail = fmt.Sprintf("deshabilitado (%s)", shortID(existing.ID))
		return res

	case ModeRemove:
		if !exists {
			res.Outcome = OutcomeSkipped
			res.Detail = "ya estaba ausente"
			return res
		}
		if r.dryRun {
			res.Outcome = OutcomeRemoved
			res.Detail = fmt.Sprintf("borraría (%s)", shortID(existing.ID))
			return res
		}
		err := r.call(ctx, func(tok pingone.Token) error {
			return r.client.DeleteAttribute(ctx, tok, existing.ID)
		})
		if err != nil {
			return r.failed(res, def, err)
		}
		delete(lookup, remoteName)
		res.Outcome = OutcomeRemoved
		res.Detail = fmt.Sprintf("id %s", shortID(existing.ID))
		return res

	default:
		res.Outcome = OutcomeFailed
		res.Err = &ReconcileError{Attribute: remoteName, Err: fmt.Errorf("modo desconocido %q", mode)}
		return res
	}
}

// failed registra la falla del atributo sin abortar el batch.
func (r *Reconciler) failed(res Result, def Definition, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = &ReconcileError{Attribute: res.RemoteName, Err: err}
	res.Detail = err.Error()
	r.log.Warn("attribute failed",
		logger.Attribute(res.RemoteName),
		logger.Err(err),
	)
	return res
}

// token consulta el cache del caller y refresca via EnsureToken si hace falta.
// El cache es un valor explícito del caller; acá no hay singleton.
func (r *Reconciler) token(ctx context.Context) (pingone.Token, error) {
	conn := r.client.Conn()
	cached := r.tokens.Get(conn)
	tok, err := r.client.EnsureToken(ctx, cached)
	if err != nil {
		return pingone.Token{}, err
	}
	if tok.AccessToken != cached.AccessToken {
		r.tokens.Put(conn, tok)
	}
	return tok, nil
}

// call ejecuta fn con un token vigente. Ante un 401 invalida el cache y
// reintenta UNA sola vez con token fresco; cualquier otra falla se devuelve
// tal cual. No hay ningún loop de retry acá.
func (r *Reconciler) call(ctx context.Context, fn func(tok pingone.Token) error) error {
	tok, err := r.token(ctx)
	if err != nil {
		return err
	}
	err = fn(tok)
	if err == nil || !pingone.IsUnauthorized(err) {
		return err
	}

	r.log.Info("token rechazado, re-autenticando una vez")
	r.tokens.Invalidate(r.client.Conn())
	tok, err = r.token(ctx)
	if err != nil {
		return err
	}
	return fn(tok)
}

// shortID corta un ID opaco para los reportes (como hace la consola).
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
