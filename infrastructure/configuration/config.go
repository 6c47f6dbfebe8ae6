package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"propgen/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
	OAuth       OAuth       `json:"oauth"`
	Vault       Vault       `json:"vault"`
	AI          AI          `json:"ai"`
	Placid      Placid      `json:"placid"`
	Storage     Storage     `json:"storage"`
	Composer    Composer    `json:"composer"`
	Extractor   Extractor   `json:"extractor"`
	TikTok      TikTokAPI   `json:"tiktok"`
	Graph       Graph       `json:"graph"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	AppURL         string   `json:"appURL"`
	AllowedOrigins []string `json:"allowedOrigins"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	DefaultLimit   int      `json:"defaultLimit"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

// OAuth holds third-party platform OAuth client credentials
type OAuth struct {
	Facebook OAuthClient `json:"facebook"`
	TikTok   OAuthClient `json:"tiktok"`
	// StateStore selects where CSRF states live: postgres (default) or redis
	StateStore string `json:"stateStore"`
}

type OAuthClient struct {
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret"`
	RedirectURI  string   `json:"redirectURI"`
	Scopes       []string `json:"scopes"`
	AuthURL      string   `json:"authURL"`
	TokenURL     string   `json:"tokenURL"`
}

// Vault holds the sealing key for provider tokens (32 bytes, hex encoded)
type Vault struct {
	Key string `json:"key"`
}

type AI struct {
	APIKey     string `json:"apiKey"`
	Endpoint   string `json:"endpoint"`
	TextModel  string `json:"textModel"`
	ImageModel string `json:"imageModel"`
}

type Placid struct {
	APIKey    string            `json:"apiKey"`
	BaseURL   string            `json:"baseURL"`
	Templates map[string]string `json:"templates"` // format -> template uuid
}

type Storage struct {
	BucketURL     string `json:"bucketURL"`
	PublicBaseURL string `json:"publicBaseURL"`
}

type Composer struct {
	Kind             string `json:"kind"`
	TemplateImageURL string `json:"templateImageURL"`
}

type Extractor struct {
	UserAgent      string `json:"userAgent"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	// Render loads listing pages in headless Chrome instead of a plain GET
	Render bool `json:"render"`
}

type TikTokAPI struct {
	BaseURL string `json:"baseURL"`
}

type Graph struct {
	BaseURL string `json:"baseURL"`
	Version string `json:"version"`
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initSecrets(&C)
	initDefaults(&C)
	if C.App.TLSEnabled {
		C.OAuth.Facebook.RedirectURI = forceHTTPS(C.OAuth.Facebook.RedirectURI)
		C.OAuth.TikTok.RedirectURI = forceHTTPS(C.OAuth.TikTok.RedirectURI)
	}
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "propgen")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "propgen")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initApp(C *Config) {
	// SECRET_KEY verifies bearer tokens issued by the auth provider
	C.App.SecretKey = getEnv("SECRET_KEY", C.App.SecretKey)
	// APP_PORT wins over PORT, both win over the config file
	C.App.Port = envInt("APP_PORT", envInt("PORT", C.App.Port))
	if C.App.Port == 0 {
		C.App.Port = 8080
	}
	C.App.TLSEnabled = envBool("TLS_ENABLED", C.App.TLSEnabled)
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	C.App.AppURL = strings.TrimRight(getConfigValue(C.App.AppURL, "APP_URL", "http://localhost:5173"), "/")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		C.App.AllowedOrigins = strings.Split(v, ",")
	}
	if len(C.App.AllowedOrigins) == 0 {
		C.App.AllowedOrigins = []string{C.App.AppURL}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("SECRET_KEY not set, every /api request will be rejected")
	}
}

func initSecrets(C *Config) {
	C.Vault.Key = getConfigValue(C.Vault.Key, "VAULT_KEY", "")
	C.AI.APIKey = getConfigValue(C.AI.APIKey, "GEMINI_API_KEY", "")
	C.Placid.APIKey = getConfigValue(C.Placid.APIKey, "PLACID_API_KEY", "")
	C.OAuth.Facebook.ClientID = getConfigValue(C.OAuth.Facebook.ClientID, "FACEBOOK_CLIENT_ID", "")
	C.OAuth.Facebook.ClientSecret = getConfigValue(C.OAuth.Facebook.ClientSecret, "FACEBOOK_CLIENT_SECRET", "")
	C.OAuth.Facebook.RedirectURI = getConfigValue(C.OAuth.Facebook.RedirectURI, "FACEBOOK_REDIRECT_URI", "")
	C.OAuth.TikTok.ClientID = getConfigValue(C.OAuth.TikTok.ClientID, "TIKTOK_CLIENT_KEY", "")
	C.OAuth.TikTok.ClientSecret = getConfigValue(C.OAuth.TikTok.ClientSecret, "TIKTOK_CLIENT_SECRET", "")
	C.OAuth.TikTok.RedirectURI = getConfigValue(C.OAuth.TikTok.RedirectURI, "TIKTOK_REDIRECT_URI", "")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
}

func initDefaults(C *Config) {
	if C.App.DefaultLimit == 0 {
		C.App.DefaultLimit = 10
	}
	if C.OAuth.StateStore == "" {
		C.OAuth.StateStore = getEnv("OAUTH_STATE_STORE", "postgres")
	}
	if len(C.OAuth.Facebook.Scopes) == 0 {
		C.OAuth.Facebook.Scopes = []string{"pages_show_list", "pages_read_engagement", "pages_manage_posts", "instagram_basic", "instagram_content_publish", "business_management"}
	}
	if len(C.OAuth.TikTok.Scopes) == 0 {
		C.OAuth.TikTok.Scopes = []string{"user.info.basic", "video.upload", "video.publish"}
	}
	if C.OAuth.TikTok.AuthURL == "" {
		C.OAuth.TikTok.AuthURL = "https://www.tiktok.com/v2/auth/authorize/"
	}
	if C.OAuth.TikTok.TokenURL == "" {
		C.OAuth.TikTok.TokenURL = "https://open.tiktokapis.com/v2/oauth/token/"
	}
	if C.Graph.Version == "" {
		C.Graph.Version = "v19.0"
	}
	if C.Graph.BaseURL == "" {
		C.Graph.BaseURL = "https://graph.facebook.com"
	}
	if C.TikTok.BaseURL == "" {
		C.TikTok.BaseURL = "https://open.tiktokapis.com"
	}
	if C.AI.TextModel == "" {
		C.AI.TextModel = "gemini-2.5-flash"
	}
	if C.AI.ImageModel == "" {
		C.AI.ImageModel = "gemini-2.5-flash-image-preview"
	}
	if C.Placid.BaseURL == "" {
		C.Placid.BaseURL = "https://api.placid.app/api/rest"
	}
	if C.Storage.BucketURL == "" {
		C.Storage.BucketURL = getEnv("STORAGE_BUCKET_URL", "file:///tmp/propgen-images?create_dir=true")
	}
	if C.Storage.PublicBaseURL == "" {
		C.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_URL", fmt.Sprintf("http://localhost:%d/images", C.App.Port))
	}
	if C.Composer.Kind == "" {
		C.Composer.Kind = getEnv("COMPOSER_KIND", "canvas")
	}
	if C.Extractor.UserAgent == "" {
		C.Extractor.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	}
	C.Extractor.Render = envBool("EXTRACTOR_RENDER", C.Extractor.Render)
	if C.Extractor.TimeoutSeconds == 0 {
		C.Extractor.TimeoutSeconds = 20
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "propgen-events"
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "propgen-events"
	}
}

// Timeout returns the outbound timeout used for listing fetches
func (e Extractor) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// forceHTTPS upgrades an http:// OAuth callback when the server terminates TLS itself
func forceHTTPS(u string) string {
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}
