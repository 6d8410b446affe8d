package main

import (
	"fmt"
	"os"

	"github.com/atlaspedia/atlaspedia-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Log.Info("Server listening", "addr", application.Cfg.HTTPAddr)
	if err := application.Run(); err != nil {
		application.Log.Error("Server failed", "error", err)
	}
}
