package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// ストアのバックエンド種別
const (
	BackendAuto      = "auto"
	BackendSupabase  = "supabase"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendLocal     = "local"
)

// Config アプリケーション設定（環境変数から読み込む）
type Config struct {
	Port         string
	StoreBackend string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseDBPassword string
	DatabaseURL        string

	FirestoreProjectID string
	CredentialsFile    string

	SpotsTable    string
	DataDir       string
	RecencyWindow time.Duration
	Location      *time.Location
	Locale        string

	NominatimURL  string
	SearchCountry string
	GinMode       string
}

// 既定値
const (
	DefaultPort          = "8080"
	DefaultSpotsTable    = "biryani_spots"
	DefaultDataDir       = "./data"
	DefaultRecencyWindow = 2 * time.Hour
	DefaultTimezone      = "Asia/Dhaka"
	DefaultLocale        = "bn"
	DefaultNominatimURL  = "https://nominatim.openstreetmap.org/search"
	DefaultSearchCountry = "bd"
)

// Load .envファイル（存在すれば）と環境変数から設定を読み込む
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ .envファイルが見つかりません、システムの環境変数を使用します")
	}
	return FromEnv()
}

// FromEnv 環境変数のみから設定を読み込む
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", DefaultPort),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendAuto)),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseDBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		CredentialsFile:    os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SpotsTable:         getEnv("SPOTS_TABLE", DefaultSpotsTable),
		DataDir:            getEnv("DATA_DIR", DefaultDataDir),
		RecencyWindow:      DefaultRecencyWindow,
		Locale:             strings.ToLower(getEnv("LOCALE", DefaultLocale)),
		NominatimURL:       getEnv("NOMINATIM_URL", DefaultNominatimURL),
		SearchCountry:      getEnv("SEARCH_COUNTRY", DefaultSearchCountry),
		GinMode:            os.Getenv("GIN_MODE"),
	}

	switch cfg.StoreBackend {
	case BackendAuto, BackendSupabase, BackendPostgres, BackendFirestore, BackendLocal:
	default:
		return nil, fmt.Errorf("STORE_BACKENDの値が不正です: %q", cfg.StoreBackend)
	}

	if raw := os.Getenv("RECENCY_WINDOW"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("RECENCY_WINDOWの値が不正です: %q", raw)
		}
		cfg.RecencyWindow = window
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", DefaultTimezone))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONEの読み込みに失敗: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// ResolveBackend 使用するリモートバックエンドとその理由を返す
// autoの場合は設定済みの認証情報から Supabase → PostgreSQL → Firestore → local の順に選ぶ
func (c *Config) ResolveBackend() (backend string, reason string) {
	if c.StoreBackend != BackendAuto {
		return c.StoreBackend, "STORE_BACKENDで指定"
	}
	switch {
	case c.SupabaseURL != "" && c.SupabaseAnonKey != "":
		return BackendSupabase, "SUPABASE_URLとSUPABASE_ANON_KEYが設定済み"
	case c.DatabaseURL != "":
		return BackendPostgres, "DATABASE_URLが設定済み"
	case c.FirestoreProjectID != "":
		return BackendFirestore, "FIRESTORE_PROJECT_IDが設定済み"
	default:
		return BackendLocal, "リモートの認証情報が未設定"
	}
}

// PostgresConnString PostgreSQLの接続文字列
// DATABASE_URLがなければSupabaseのURLとDBパスワードから組み立てる
func (c *Config) PostgresConnString() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.SupabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URLまたはSUPABASE_URL環境変数が設定されていません")
	}
	if c.SupabaseDBPassword == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORD環境変数が設定されていません")
	}

	// https://xxx.supabase.co -> xxx.supabase.co
	host := strings.TrimPrefix(strings.TrimPrefix(c.SupabaseURL, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, c.SupabaseDBPassword,
	), nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
