package main

import (
	"log/slog"
	"os"

	"yashubustudio/evtrisk/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		slog.Error("evtrisk stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
