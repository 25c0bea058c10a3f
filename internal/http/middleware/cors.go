package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/privatinsolvenz/lead-dashboard/internal/config"
	"go.uber.org/zap"
)

// IsDevelopment reports whether environment relaxes origin checks
func IsDevelopment(environment string) bool {
	return environment == "" || environment == "development" || environment == "local"
}

// StreamOrigins returns the origins allowed to open the log stream websocket,
// following the same rules as CORS
func StreamOrigins(cfg *config.CORSConfig, environment string) []string {
	if len(cfg.AllowedOrigins) == 0 && IsDevelopment(environment) {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}

// CORS returns a CORS middleware configured from the application config.
// Without configured origins every origin is allowed in development and none
// in other environments.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }

	switch {
	case containsWildcard(cfg.AllowedOrigins):
		if !IsDevelopment(environment) {
			logger.Warn("CORS configured with wildcard origin in non-development environment",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	case IsDevelopment(environment):
		options.AllowOriginFunc = allowAny
		logger.Info("CORS configured to allow all origins in development mode")
	default:
		// An empty AllowedOrigins list means "*" to go-chi/cors
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS configured with no allowed origins - all cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
