package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/infrastructure/database"
	"SpotMap-App/internal/infrastructure/firestore"
)

// loadTestEnv はリポジトリルートの .env を読み込む（存在しなくてもよい）
func loadTestEnv() {
	_ = godotenv.Load("../../.env")
}

func TestPostgresReportRepository_Integration(t *testing.T) {
	loadTestEnv()
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL が設定されていないためスキップ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewPostgreSQLClient(ctx, connStr)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.HealthCheck(ctx))

	table := fmt.Sprintf("spots_test_%d", time.Now().UnixNano())
	repo := NewPostgresReportRepository(client, table)
	require.NoError(t, repo.EnsureSchema(ctx))
	defer client.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table))

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	events, err := NewPostgresChangeFeed(client.ConnString(), repo.NotifyChannel()).Subscribe(feedCtx)
	require.NoError(t, err)

	report := storedReport("pg-1")
	saved, err := repo.Insert(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, report.ID, saved.ID)

	select {
	case event := <-events:
		assert.Equal(t, model.ChangeInsert, event.Op)
		assert.Equal(t, "pg-1", event.TargetID())
	case <-time.After(10 * time.Second):
		t.Fatal("insertの通知が届きませんでした")
	}

	likes := 3
	require.NoError(t, repo.Update(ctx, "pg-1", model.ReportPatch{Likes: &likes}))
	assert.Error(t, repo.Update(ctx, "missing", model.ReportPatch{Likes: &likes}))

	reports, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Likes)
}

func TestSupabaseReportRepository_Integration(t *testing.T) {
	loadTestEnv()
	url, key := os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_ANON_KEY")
	if url == "" || key == "" {
		t.Skip("Supabase の環境変数が設定されていないためスキップ")
	}

	client, err := database.NewSupabaseClient(url, key)
	require.NoError(t, err)
	require.NoError(t, client.HealthCheck())

	table := os.Getenv("SPOTS_TABLE")
	if table == "" {
		table = "biryani_spots"
	}
	reports, err := NewSupabaseReportRepository(client, table).List(context.Background())
	require.NoError(t, err)

	for i := 1; i < len(reports); i++ {
		assert.False(t, reports[i].CreatedAt.After(reports[i-1].CreatedAt), "createdAtの降順で返る")
	}
}

func TestFirestoreReportRepository_Integration(t *testing.T) {
	loadTestEnv()
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID が設定されていないためスキップ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := firestore.NewFirestoreClient(ctx, projectID, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	require.NoError(t, err)
	defer client.Close()

	collection := fmt.Sprintf("spots_test_%d", time.Now().UnixNano())
	repo := NewFirestoreReportRepository(client.GetClient(), collection)

	report := storedReport("fs-1")
	_, err = repo.Insert(ctx, report)
	require.NoError(t, err)
	defer client.GetClient().Collection(collection).Doc("fs-1").Delete(context.Background())

	active := false
	require.NoError(t, repo.Update(ctx, "fs-1", model.ReportPatch{IsActive: &active}))

	reports, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].IsActive)
	assert.True(t, report.CreatedAt.Equal(reports[0].CreatedAt))
}
