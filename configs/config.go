package config

import (
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	BotToken     string
	DatabasePath string
	ImagesDir    string
	ExportPath   string
	RedisURI     string
	StatusAddr   string
	AdminUserIDs []int64
	R2           R2
}

func LoadConfig() *Config {
	return &Config{
		BotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		DatabasePath: getEnv("DATABASE_PATH", "blog_posts.db"),
		ImagesDir:    getEnv("IMAGES_DIR", "images/tg"),
		ExportPath:   getEnv("EXPORT_PATH", "blog_posts.json"),
		RedisURI:     getEnv("REDIS_URI", ""),
		StatusAddr:   getEnv("STATUS_ADDR", ""),
		AdminUserIDs: parseIDList(getEnv("ADMIN_USER_IDS", "")),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

// IsAdmin reports whether the given Telegram user may run admin commands.
// An empty allow-list means no one is an admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIDList(value string) []int64 {
	if value == "" {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
