// config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	AuthURL     string
	CoursesURL  string
	RabbitURL   string
	Port        string
}

func Load() *Config {
	// .env es opcional; en docker las variables ya vienen del entorno.
	_ = godotenv.Load()

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "course_orders_db"),
		AuthURL:     getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		CoursesURL:  getEnv("COURSES_URL", "http://host.docker.internal:3002"),
		RabbitURL:   getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:        getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
