package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/homecase-tasks/internal/infra/config"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-tasks/internal/infra/transport/http"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
	"github.com/mkrupp/homecase-tasks/internal/repo/task"
	"github.com/mkrupp/homecase-tasks/internal/repo/user"
	"github.com/mkrupp/homecase-tasks/internal/svc/authsvc"
	"github.com/mkrupp/homecase-tasks/internal/svc/tasksvc"
)

const (
	appName = "tasks"
	svcName = "tasksvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig      `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig        `envPrefix:"AUTH_"`
	HTTP http_.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB   sqldb.Config              `envPrefix:"DB_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.tasksvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	db, err := sqldb.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	handler, err := newHandler(db, cfg.Auth)
	if err != nil {
		return err
	}

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// newHandler wires the services on db into the routes of the service:
// GET / greets, /signup and /login are public, /todos requires a bearer token.
func newHandler(db *sqldb.DB, authCfg authsvc.AuthConfig) (*http.ServeMux, error) {
	authSvc, err := authsvc.NewAuthService(user.SQLUserRepositoryFactory(db), authCfg)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	taskSvc, err := tasksvc.NewRepoTaskService(task.SQLTaskRepositoryFactory(db))
	if err != nil {
		return nil, fmt.Errorf("new task service: %w", err)
	}

	authTransport := authsvc.NewHTTPTransport(authSvc)
	taskTransport := http_.AuthenticatingMiddleware(
		tasksvc.NewHTTPTransport(taskSvc),
		authsvc.NewGate(authSvc.Tokens),
		logging.GetLogger("cmd.tasksvc.auth"),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleGreeting)
	mux.Handle("/signup", authTransport)
	mux.Handle("/login", authTransport)
	mux.Handle("/todos", taskTransport)
	mux.Handle("/todos/", taskTransport)

	return mux, nil
}

func handleGreeting(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Hello, World!"})
}
