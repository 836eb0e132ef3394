package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - API CALLS
// =================================================================================

// CallID crea un campo para el ID de correlación de la llamada API.
func CallID(v string) zap.Field {
	return zap.String("call_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// URL crea un campo para la URL del request.
func URL(v string) zap.Field {
	return zap.String("url", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DOMINIO
// =================================================================================

// Environment crea un campo para el environment ID de PingOne.
func Environment(v string) zap.Field {
	return zap.String("environment_id", v)
}

// FriendlyName crea un campo para el nombre amigable de la conexión.
func FriendlyName(v string) zap.Field {
	return zap.String("friendly_name", v)
}

// ClientID crea un campo para el client ID OAuth del worker app.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// Attribute crea un campo para el nombre del atributo de schema.
func Attribute(v string) zap.Field {
	return zap.String("attribute", v)
}

// AttributeID crea un campo para el ID remoto del atributo.
func AttributeID(v string) zap.Field {
	return zap.String("attribute_id", v)
}

// Mode crea un campo para el modo de operación (create/display/clear/remove).
func Mode(v string) zap.Field {
	return zap.String("mode", v)
}

// Outcome crea un campo para el resultado por atributo.
func Outcome(v string) zap.Field {
	return zap.String("outcome", v)
}

// DryRun crea un campo que marca una ejecución simulada.
func DryRun(v bool) zap.Field {
	return zap.Bool("dry_run", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Success crea un campo booleano de éxito (tests de conexión).
func Success(v bool) zap.Field {
	return zap.Bool("success", v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
