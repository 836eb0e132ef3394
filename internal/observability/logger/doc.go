// Package logger provides a singleton Zap logger for the p1person CLI.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init() en main.
//   - Context Scoping: Cada llamada a la Management API puede llevar un logger
//     "scoped" con campos propios (call_id, method, url) sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via P1PERSON_LOG_LEVEL).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),
//	    Level: os.Getenv("P1PERSON_LOG_LEVEL"),
//	})
//	defer logger.Sync()
//
// En el cliente API (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("api call", logger.Method("GET"), logger.Status(200))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("application started")
package logger
