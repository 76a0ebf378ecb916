// @title EventEase API
// @version 1.0
// @description Venue, event and booking management with double-booking prevention.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"log"
	"os"

	"eventease/config"
	_ "eventease/docs"
	"eventease/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
