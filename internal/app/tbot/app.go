package tbot

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/config"
	"github.com/DenisKhanov/ScreenTeacher/internal/logcfg"
)

// App represents the application structure responsible for initializing
// dependencies and running the Telegram bot.
type App struct {
	serviceProvider *ServiceProvider // The service provider for dependency injection
	config          *config.Config   // The configuration object for the application
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

// Run starts the application and runs the Telegram bot.
func (a *App) Run() {
	a.runTelegramBot()
}

// initDeps initializes all dependencies required by the application.
func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initServiceProvider,
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
	return nil
}

// initServiceProvider initializes the service provider for dependency injection.
func (a *App) initServiceProvider(_ context.Context) error {
	a.serviceProvider = NewServiceProvider(a.config)
	return nil
}

// runTelegramBot starts the Telegram bot with graceful shutdown.
func (a *App) runTelegramBot() {
	botAPI, err := a.serviceProvider.BotAPI(a.config.EnvBotToken)
	if err != nil {
		logrus.Fatalf("[ERROR] can't make telegram bot, %v", err)
	}
	logrus.Infof("Bot API created successfully for %s", botAPI.Self.UserName)

	bot := NewBot(botAPI, a.serviceProvider.TeacherService())

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60 // seconds timeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case sig := <-signalChan:
			logrus.Infof("Received %v signal, shutting down bot...", sig)
			botAPI.StopReceivingUpdates()
			logrus.Info("Shutting down main loop...")
			return

		case update, ok := <-updates:
			if !ok {
				logrus.Errorf("telegram update chan closed")
				return
			}
			bot.HandleUpdate(&update)
		}
	}
}
