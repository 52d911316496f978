package config

import "os"

type Config struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	GCSBucket    string
	GeminiKey    string
	ShareBaseURL string
}

func LoadConfig() Config {
	return Config{
		DBHost:       os.Getenv("DB_HOST"),
		DBPort:       os.Getenv("DB_PORT"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		GCSBucket:    os.Getenv("GCS_BUCKET"),
		GeminiKey:    os.Getenv("GEMINI_KEY"),
		ShareBaseURL: os.Getenv("SHARE_BASE_URL"),
	}
}
