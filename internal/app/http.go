package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"

	"github.com/adanyl0v/swifttrack/internal/board"
	"github.com/adanyl0v/swifttrack/internal/config"
	"github.com/adanyl0v/swifttrack/internal/delivery/http/v1"
	"github.com/adanyl0v/swifttrack/internal/services"
	"github.com/adanyl0v/swifttrack/internal/theme"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	hub := registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: withCORS(router, httpCfg.CORSAllowedOrigins),
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}

	// Status changes already accepted must reach postgres before the pool closes.
	hub.Shutdown()
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) *board.Hub {
	cfg := config.Global()
	jwtCfg := cfg.JWT

	authService := services.NewAuthService(globalLogger, globalPostgresPool, services.TokenConfig{
		Issuer:     jwtCfg.Issuer,
		SigningKey: []byte(jwtCfg.SigningKey),
		AccessTTL:  jwtCfg.AccessTokenTTL,
		RefreshTTL: jwtCfg.RefreshTokenTTL,
	})
	sessionService := services.NewSessionService(globalLogger, globalPostgresPool)
	projectService := services.NewProjectService(globalLogger, globalPostgresPool)
	taskService := services.NewTaskService(globalLogger, globalPostgresPool)

	hub := board.NewHub(globalLogger, taskService, board.HubOptions{
		Options: board.Options{
			RemoteTimeout: cfg.Board.RemoteTimeout,
		},
		ActivationDistance: cfg.Board.ActivationDistance,
	})

	// Validated by the config reader.
	defaultTheme, _ := theme.Parse(cfg.Theme.Default)

	v1Handler := v1.New(
		globalLogger,
		authService,
		sessionService,
		projectService,
		taskService,
		hub,
		theme.NewPreference(defaultTheme),
	)
	v1.Register(router.Group("/api/v1"), v1Handler)
	return hub
}

// withCORS allows every origin when none are configured. Credentials are
// only allowed for an explicit origin list.
func withCORS(h http.Handler, allowedOrigins []string) http.Handler {
	opts := []gorillahandlers.CORSOption{
		gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
	}

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	} else {
		opts = append(opts, gorillahandlers.AllowCredentials())
	}
	opts = append(opts, gorillahandlers.AllowedOrigins(allowedOrigins))

	globalLogger.Info().
		Strs("origins", allowedOrigins).
		Msg("configured cors")
	return gorillahandlers.CORS(opts...)(h)
}
