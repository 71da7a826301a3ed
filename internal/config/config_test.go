package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "STORE_BACKEND", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_DB_PASSWORD",
	"DATABASE_URL", "FIRESTORE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "SPOTS_TABLE",
	"DATA_DIR", "RECENCY_WINDOW", "TIMEZONE", "LOCALE", "NOMINATIM_URL", "SEARCH_COUNTRY", "GIN_MODE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, BackendAuto, cfg.StoreBackend)
	assert.Equal(t, DefaultSpotsTable, cfg.SpotsTable)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultRecencyWindow, cfg.RecencyWindow)
	assert.Equal(t, DefaultLocale, cfg.Locale)
	assert.Equal(t, DefaultSearchCountry, cfg.SearchCountry)
	require.NotNil(t, cfg.Location)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "LOCAL")
	t.Setenv("RECENCY_WINDOW", "10h")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOCALE", "en")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendLocal, cfg.StoreBackend)
	assert.Equal(t, 10*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "en", cfg.Locale)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "mysql")
	_, err := FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("RECENCY_WINDOW", "two hours")
	_, err = FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestResolveBackend(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"明示指定", Config{StoreBackend: BackendFirestore, SupabaseURL: "https://x.supabase.co", SupabaseAnonKey: "k"}, BackendFirestore},
		{"Supabase", Config{StoreBackend: BackendAuto, SupabaseURL: "https://x.supabase.co", SupabaseAnonKey: "k"}, BackendSupabase},
		{"URLのみではSupabaseにしない", Config{StoreBackend: BackendAuto, SupabaseURL: "https://x.supabase.co"}, BackendLocal},
		{"PostgreSQL", Config{StoreBackend: BackendAuto, DatabaseURL: "postgres://localhost/spots"}, BackendPostgres},
		{"Firestore", Config{StoreBackend: BackendAuto, FirestoreProjectID: "spots"}, BackendFirestore},
		{"未設定", Config{StoreBackend: BackendAuto}, BackendLocal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := tc.cfg.ResolveBackend()
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestPostgresConnString(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://u:p@localhost/spots"}
	conn, err := cfg.PostgresConnString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/spots", conn)

	cfg = Config{SupabaseURL: "https://abc.supabase.co/", SupabaseDBPassword: "secret"}
	conn, err = cfg.PostgresConnString()
	require.NoError(t, err)
	assert.Contains(t, conn, "host=db.abc.supabase.co")
	assert.Contains(t, conn, "password=secret")

	cfg = Config{SupabaseURL: "https://abc.supabase.co"}
	_, err = cfg.PostgresConnString()
	assert.Error(t, err)
}
