package main

import (
	"log/slog"
	"os"
)

// @title           SolarFlow CRM API
// @version         1.0
// @description     Client pipeline, field tasks, inventory and invoicing for solar installation teams.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
