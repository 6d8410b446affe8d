package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/app"
)

// Seeds the built-in system taxonomy. Safe to re-run: tags that already
// exist are skipped.
func main() {
	var actor string
	flag.StringVar(&actor, "actor", "", "user id to record as the seeding actor (optional)")
	flag.Parse()

	actorID := uuid.Nil
	if s := strings.TrimSpace(actor); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			fmt.Printf("invalid -actor %q: %v\n", s, err)
			os.Exit(1)
		}
		actorID = id
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	created, err := application.Services.Seeder.Seed(context.Background(), actorID)
	if err != nil {
		application.Log.Error("Seed failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d tags\n", created)
}
