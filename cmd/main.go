package main

import (
	"flag"

	"telemed-clinic-backend/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional env file; process environment overrides it")
	flag.Parse()

	app, err := bootstrap.New(*envFile)
	if err != nil {
		logrus.Fatalf("Failed to initialize clinic backend: %v", err)
	}

	// Serves until SIGINT/SIGTERM, then drains within APP_SHUTDOWN_TIMEOUT.
	app.Run()
}
