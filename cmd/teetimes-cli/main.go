package main

import (
	"context"

	"teetimes-backend/cmd/teetimes-cli/commands"
	"teetimes-backend/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	telemetry.SetupFromEnv(context.Background(), "teetimes-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
