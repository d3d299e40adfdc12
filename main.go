package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/tinyrdb/gologger"
	"github.com/danthegoodman1/tinyrdb/http_server"
	"github.com/danthegoodman1/tinyrdb/repl"
	"github.com/danthegoodman1/tinyrdb/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting tinyrdb")

	app, err := NewApp(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("error starting tinyrdb")
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "repl" {
		runREPL(app)
		return
	}

	httpServer := http_server.StartHTTPServer(app.Exec, app.Wallets, app.Audit)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}

	if err := app.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown datastore")
	}
}

func runREPL(app *App) {
	r := repl.New(app.Exec, app.Audit, os.Stdin, os.Stdout)
	err := r.Run(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("repl exited with error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if serr := app.Shutdown(ctx); serr != nil {
		logger.Error().Err(serr).Msg("failed to shutdown datastore")
	}
	if err != nil {
		os.Exit(1)
	}
}
