package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sneedwallet "github.com/Snassy-icp/app-sneeddao-sub001"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/handler"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/ledgerclient"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/notify"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/service"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Info("starting wallet server")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %s", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("failed to read config: %s", err)
	}
	if level, err := logrus.ParseLevel(viper.GetString("log_level")); err == nil {
		logrus.SetLevel(level)
	}

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err)
	}
	logrus.Info("database connected")

	if viper.GetBool("db.migrate") {
		n, err := repository.Migrate(db, sneedwallet.SchemaFiles, "schema")
		if err != nil {
			logrus.Fatalf("failed to migrate database: %s", err)
		}
		logrus.WithField("applied", n).Info("database migrated")
	}

	gateway := ledgerclient.NewClient(ledgerclient.Config{
		BaseURL:    viper.GetString("gateway.base_url"),
		APIKey:     os.Getenv("GATEWAY_API_KEY"),
		Timeout:    viper.GetDuration("gateway.timeout"),
		RetryCount: viper.GetInt("gateway.retry_count"),
	})

	notifier := notify.New(notify.Config{
		Provider:      viper.GetString("notify.provider"),
		From:          viper.GetString("notify.from"),
		To:            viper.GetString("notify.to"),
		MailjetKey:    os.Getenv("MAILJET_API_KEY"),
		MailjetSecret: os.Getenv("MAILJET_SECRET_KEY"),
		SMTPHost:      viper.GetString("notify.smtp_host"),
		SMTPPort:      viper.GetInt("notify.smtp_port"),
		SMTPUsername:  viper.GetString("notify.smtp_username"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
	})

	repos := repository.NewRepository(db)
	services := service.NewService(repos, gateway, service.Config{
		VaultOwner:   viper.GetString("gateway.vault_owner"),
		PollInterval: viper.GetDuration("claim.poll_interval"),
		MaxAttempts:  viper.GetInt("claim.max_attempts"),
		PriceTTL:     viper.GetDuration("cache.price_ttl"),
		LockTTL:      viper.GetDuration("cache.lock_ttl"),
		Notifier:     notifier,
	})
	handlers := handler.NewHandler(services, viper.GetStringSlice("server.cors_origins"))

	port := os.Getenv("PORT")
	if port == "" {
		port = viper.GetString("server.port")
	}

	srv := new(sneedwallet.Server)
	go func() {
		if err := srv.Run(port, handlers.InitRoute()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("failed to run server: %s", err)
		}
	}()
	logrus.WithField("port", port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("server.shutdown_timeout"))
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server shutdown: %s", err)
	}
	services.Claim.Shutdown()
	if err := db.Close(); err != nil {
		logrus.Errorf("closing database: %s", err)
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
