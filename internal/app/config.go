package app

import (
	"strings"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/utils"
)

type Config struct {
	HTTPAddr      string
	JWTSecretKey  string
	Environment   string
	Version       string
	CORSOrigins   []string
	KnowledgePath string
	SeedOnBoot    bool
}

func LoadConfig(log *logger.Logger) Config {
	corsRaw := utils.GetEnv("CORS_ORIGINS", "", log)
	var origins []string
	for _, o := range strings.Split(corsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		HTTPAddr:      ":" + utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:  utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		Environment:   utils.GetEnv("ENVIRONMENT", "development", log),
		Version:       utils.GetEnv("SERVICE_VERSION", "dev", log),
		CORSOrigins:   origins,
		KnowledgePath: utils.GetEnv("CLASSIFIER_KNOWLEDGE_PATH", "", log),
		SeedOnBoot:    utils.GetEnv("SEED_TAXONOMY_ON_BOOT", "", log) == "true",
	}
}
