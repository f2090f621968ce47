package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort       string
	DBDSN         string
	JWTSecret     string
	JWTExpiresMin int

	RedisAddr     string
	RedisPassword string

	// Storage backend: "local" or "supabase" (supabase falls back to local)
	StorageBackend string
	UploadDir      string
	AppBaseURL     string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	return Config{
		AppPort:       get("APP_PORT", "8080"),
		DBDSN:         must("DB_DSN"),
		JWTSecret:     must("JWT_SECRET"),
		JWTExpiresMin: expires,

		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),

		StorageBackend: get("STORAGE_BACKEND", "local"),
		UploadDir:      get("UPLOAD_DIR", "./uploads"),
		AppBaseURL:     get("APP_BASE_URL", "http://localhost:8080"),

		SupabaseURL:    get("SUPABASE_URL", ""),
		SupabaseKey:    get("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket: get("SUPABASE_BUCKET", "uploads"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
