package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/kardianos/minwinsvc"

	"github.com/Unleash/unleash-proxy-client-go/config"
	"github.com/Unleash/unleash-proxy-client-go/internal/application"
	"github.com/Unleash/unleash-proxy-client-go/internal/logging"
	"github.com/Unleash/unleash-proxy-client-go/internal/version"
)

func main() {
	loggers := logging.MakeDefaultLoggers()

	opts, err := application.ReadOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loggers.Infof("Starting unleash-proxy-client version %s with %s",
		application.DescribeVersion(version.Version), opts.DescribeConfigSource())

	c, err := application.LoadConfig(opts, loggers)
	if err != nil {
		loggers.Errorf("Configuration error: %s", err)
		os.Exit(1)
	}
	loggers = logging.WithLevel(loggers, c.Main.LogLevel.GetOrElse(loggers.GetMinLevel()))

	app, err := application.NewApplication(c, loggers)
	if err != nil {
		loggers.Errorf("Unable to create client: %s", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Start(ctx)

	srv, errCh := application.StartHTTPServer(c.Server.Port.GetOrElse(config.DefaultServerPort), app.Handler(), loggers)

	select {
	case err := <-errCh:
		loggers.Errorf("Error starting HTTP server: %s", err)
	case <-ctx.Done():
		loggers.Info("Shutting down")
	}
	_ = srv.Close()
}
