package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret          string
	GoogleClientID     string
	SchoolName         string
	StaffNotifyEmail   string
	SupabaseProjectURL string
	SupabaseServiceKey string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded!")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	SchoolName = GetEnv("SCHOOL_NAME", "Woodstock School")
	StaffNotifyEmail = GetEnv("STAFF_NOTIFY_EMAIL")
	SupabaseProjectURL = GetEnv("SUPABASE_PROJECT_URL")
	SupabaseServiceKey = GetEnv("SUPABASE_SERVICE_ROLE_KEY")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	} else {
		log.Println("✅ JWT_SECRET loaded.")
	}

	if SupabaseProjectURL == "" {
		log.Println("❌ SUPABASE_PROJECT_URL is not set!")
	} else {
		log.Println("✅ SUPABASE_PROJECT_URL loaded.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
