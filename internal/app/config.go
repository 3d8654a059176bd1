package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/havenapp/haven-backend/internal/pkg/envutil"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type Config struct {
	Port   string
	AppEnv string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSOrigins []string

	OtelServiceName string
}

func LoadConfig(log *logger.Logger) Config {
	// A missing .env is fine; deployed environments inject real vars.
	_ = godotenv.Load()

	accessTTLMinutes := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL_MIN", 60, log)
	refreshTTLHours := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 24, log)

	return Config{
		Port:            envutil.GetEnv("PORT", "8080", log),
		AppEnv:          envutil.GetEnv("APP_ENV", "development", log),
		JWTSecretKey:    envutil.GetEnv("JWT_SECRET", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		RefreshTokenTTL: time.Duration(refreshTTLHours) * time.Hour,
		CORSOrigins:     splitCSV(envutil.GetEnv("CORS_ORIGINS", "", log)),
		OtelServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "haven-backend", log),
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
