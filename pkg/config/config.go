package config

import (
	"log"
	"os"
	"strconv"
)

func New() Config {
	return Config{
		Hostname:                 requireEnv("HOSTNAME"),
		Port:                     requireEnvAsInt("PORT"),
		SecureCookies:            envAsBool("SECURE_COOKIES"),
		SessionSecret:            requireEnv("SESSION_SECRET"),
		SessionExpirationSeconds: requireEnvAsInt("SESSION_EXPIRATION_SECONDS"),
		AdminUser: adminUser{
			Email:    requireEnv("ADMIN_USER_EMAIL"),
			Password: requireEnv("ADMIN_USER_PASSWORD"),
		},
		Google: google{
			ClientID:     requireEnv("GOOGLE_CLIENT_ID"),
			ClientSecret: requireEnv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  requireEnv("GOOGLE_CALLBACK_URL"),
		},
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		S3: S3{
			Region:    requireEnv("AWS_REGION"),
			Bucket:    requireEnv("AWS_S3_BUCKET"),
			KeyPrefix: os.Getenv("AWS_S3_IMAGES_SUBFOLDER"),
		},
	}
}

type Config struct {
	Hostname                 string
	Port                     int
	SecureCookies            bool
	SessionSecret            string
	SessionExpirationSeconds int
	AdminUser                adminUser
	Google                   google
	Postgresql               Postgresql
	S3                       S3
}

type adminUser struct {
	Email    string
	Password string
}

type google struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type S3 struct {
	Region string
	Bucket string
	// KeyPrefix is prepended to every object key. Empty means the bucket root.
	KeyPrefix string
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func envAsBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
