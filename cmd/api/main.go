// Package main is the entry point for the books API server.
// It wires together configuration, the book store, the book service, and the HTTP router.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/service"
)

// appVersion is the current version of the API, shown in logs and the healthcheck.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig         // Server configuration loaded from flags and file
	logger *slog.Logger         // Structured logger that writes to stdout
	models data.Models          // Storage backends, used directly only by the healthcheck
	books  *service.BookService // Book operations used by the handlers
}

// newApplication builds the dependency graph around an already opened store.
func newApplication(settings serverConfig, logger *slog.Logger, store data.BookStore) *applicationDependencies {
	return &applicationDependencies{
		config: settings,
		logger: logger,
		models: data.NewModels(store),
		books:  service.New(store, logger.With("component", "books")),
	}
}

// main is the application entry point.
// It loads the configuration, opens the store, wires up dependencies, and starts the HTTP server.
func main() {
	settings, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error(err.Error())
		os.Exit(2)
	}

	level := &slog.LevelVar{}
	logLevel, _ := settings.level()
	level.Set(logLevel)
	logger := newLogger(level)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(settings, logger)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer closeStore()

	logger.Info("book store ready", "store", settings.Store, "driver", settings.DB.Driver)

	appInstance := newApplication(settings, logger, store)

	if err := appInstance.serve(); err != nil {
		logger.Error(err.Error())
		closeStore()
		os.Exit(1)
	}
}
