package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/config"
	"github.com/DenisKhanov/ScreenTeacher/internal/logcfg"
)

// App represents the application structure responsible for initializing
// dependencies and running the web server.
type App struct {
	serviceProvider *ServiceProvider // The service provider for dependency injection
	config          *config.Config   // The configuration object for the application
	listenConfig    *ListenConfig    // The HTTP listener settings
	serverHTTP      *http.Server     // The HTTP server instance
}

// NewApp creates a new instance of the application.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{}
	err := app.initDeps(ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Run starts the application and runs the web server.
func (a *App) Run() {
	a.runServer()
}

// initDeps initializes all dependencies required by the application.
func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initServiceProvider,
		a.initHTTPServer,
	}

	for _, f := range inits {
		err := f(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// initConfig initializes the application configuration.
func (a *App) initConfig(_ context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	a.config = cfg
	logcfg.RunLoggerConfig(a.config.EnvLogsLevel, a.config.EnvLogFileName)

	listenCfg, err := NewListenConfig()
	if err != nil {
		return err
	}
	a.listenConfig = listenCfg
	return nil
}

// initServiceProvider initializes the service provider for dependency injection.
func (a *App) initServiceProvider(_ context.Context) error {
	a.serviceProvider = NewServiceProvider(a.config)
	return nil
}

// initHTTPServer initializes the web server with routes.
func (a *App) initHTTPServer(_ context.Context) error {
	gin.SetMode(a.listenConfig.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	a.serviceProvider.Handler().RegisterRoutes(router)

	a.serverHTTP = &http.Server{
		Addr:    a.listenConfig.RunAddr,
		Handler: router,
	}
	return nil
}

// runServer runs the web server with graceful shutdown.
func (a *App) runServer() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("Web frontend listening on %s", a.serverHTTP.Addr)
		if err := a.serverHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	sig := <-signalChan
	logrus.Infof("Received %v signal, shutting down server...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.serverHTTP.Shutdown(ctx); err != nil {
		logrus.Errorf("Error during server shutdown: %v", err)
	}
	logrus.Info("Server stopped")
}
