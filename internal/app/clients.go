package app

import (
	"context"
	"os"

	"github.com/atlaspedia/atlaspedia-backend/internal/clients/gcp"
	rediscache "github.com/atlaspedia/atlaspedia-backend/internal/clients/redis"
	"github.com/atlaspedia/atlaspedia-backend/internal/data/graph"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/platform/neo4jdb"
)

// Clients holds the optional external dependencies. Every field can be
// nil; the services degrade to postgres-only behavior.
type Clients struct {
	Neo4j      *neo4jdb.Client
	TagGraph   *graph.TagGraph
	Cache      rediscache.QueryCache
	Recognizer gcp.Recognizer
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j unavailable, graph mirror disabled", "error", err)
		neoClient = nil
	}

	cache, err := rediscache.NewQueryCache(log)
	if err != nil {
		log.Warn("Redis unavailable, query cache disabled", "error", err)
		cache = nil
	}

	var recognizer gcp.Recognizer
	if visionConfigured() {
		recognizer, err = gcp.NewRecognizer(log)
		if err != nil {
			log.Warn("Vision client init failed, recognition disabled", "error", err)
			recognizer = nil
		}
	} else {
		log.Info("No GCP credentials configured, recognition disabled")
	}

	return Clients{
		Neo4j:      neoClient,
		TagGraph:   graph.NewTagGraph(neoClient, log),
		Cache:      cache,
		Recognizer: recognizer,
	}, nil
}

func visionConfigured() bool {
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON") != ""
}

func (c Clients) Close(ctx context.Context) {
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Recognizer != nil {
		_ = c.Recognizer.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
