package main

import (
	"os"

	"github.com/joho/godotenv"

	"csv2ics/internal/cli"
	appLog "csv2ics/internal/log"
)

func init() {
	// Optional .env in the working directory; real env vars win.
	if err := godotenv.Load(); err != nil {
		appLog.Debug("no .env loaded", "reason", err.Error())
	}
}

func main() {
	os.Exit(cli.Execute(os.Args[1:], cli.OSEnv()))
}
