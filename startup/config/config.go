package config

import "os"

type Config struct {
	Port          string
	MongoURI      string
	RedisAddress  string
	UploadDir     string
	LogFile       string
	JaegerAddress string
}

func NewConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "5000"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		LogFile:       getEnv("LOG_FILE", "logs/gastmanager.log"),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
