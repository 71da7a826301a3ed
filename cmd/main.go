package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"SpotMap-App/internal/application"
	"SpotMap-App/internal/config"
	"SpotMap-App/internal/domain/repository"
	"SpotMap-App/internal/domain/service"
	"SpotMap-App/internal/handler"
	"SpotMap-App/internal/infrastructure/database"
	"SpotMap-App/internal/infrastructure/firestore"
	"SpotMap-App/internal/infrastructure/geocode"
	"SpotMap-App/internal/infrastructure/localstore"
	repoimpl "SpotMap-App/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 設定の読み込みに失敗: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, err := localstore.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ ローカルスナップショットの初期化に失敗: %v", err)
	}
	voteFile, err := localstore.NewVoteFile(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ 投票記録ファイルの初期化に失敗: %v", err)
	}

	remote, feed, healthCheck, cleanup := setupBackend(ctx, cfg, snapshot)
	defer cleanup()

	store := repoimpl.NewReportStore(remote, snapshot)
	controller := application.NewSpotController(store, service.NewVoteReconciler(voteFile), application.ControllerOptions{
		RecencyWindow: cfg.RecencyWindow,
		Location:      cfg.Location,
		Locale:        cfg.Locale,
	})

	if err := controller.Load(ctx); err != nil {
		log.Printf("⚠️ 初回の読み込みに失敗: %v", err)
	}

	go func() {
		if err := controller.Run(ctx, feed); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("⚠️ 変更フィードが停止しました: %v", err)
		}
	}()

	searcher := geocode.NewNominatimClient(cfg.NominatimURL, cfg.SearchCountry, cfg.Locale)
	router := handler.NewRouter(handler.NewSpotsHandler(controller), handler.NewPlacesHandler(searcher), handler.NewHealthHandler(controller.Mode(), healthCheck))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 SpotMap-App server starting on :%s (store=%s)", cfg.Port, controller.Mode())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ サーバーの起動に失敗: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("🛑 シャットダウンします")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ サーバーの停止に失敗: %v", err)
	}
	controller.Flush()
}

// setupBackend 設定に応じてリモートバックエンドと変更フィードを初期化する
// 初期化に失敗した場合はローカルモードで起動する
func setupBackend(ctx context.Context, cfg *config.Config, snapshot *localstore.SnapshotStore) (repository.RemoteReportRepository, repository.ChangeFeed, handler.HealthCheckFunc, func()) {
	backend, reason := cfg.ResolveBackend()
	log.Printf("📦 ストアのバックエンド: %s (%s)", backend, reason)

	localFeed := repoimpl.NewLocalChangeFeed(snapshot)
	noop := func() {}

	switch backend {
	case config.BackendSupabase:
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Printf("⚠️ Supabaseクライアントの初期化に失敗、ローカルモードで起動します: %v", err)
			return nil, localFeed, nil, noop
		}
		if err := client.HealthCheck(); err != nil {
			log.Printf("⚠️ Supabaseヘルスチェック失敗、ローカルモードで起動します: %v", err)
			return nil, localFeed, nil, noop
		}
		remote := repoimpl.NewSupabaseReportRepository(client, cfg.SpotsTable)
		supabaseCheck := func(context.Context) error { return client.HealthCheck() }

		// Supabaseのデータベースに直接接続できればLISTEN/NOTIFYで変更を購読する
		connStr, err := cfg.PostgresConnString()
		if err != nil {
			log.Printf("⚠️ DB接続情報がないためリアルタイム更新はローカルの監視のみです: %v", err)
			return remote, localFeed, supabaseCheck, noop
		}
		pg, err := database.NewPostgreSQLClient(ctx, connStr)
		if err != nil {
			log.Printf("⚠️ PostgreSQLに接続できないためリアルタイム更新はローカルの監視のみです: %v", err)
			return remote, localFeed, supabaseCheck, noop
		}
		pgRepo := repoimpl.NewPostgresReportRepository(pg, cfg.SpotsTable)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Printf("⚠️ 変更通知トリガーの準備に失敗: %v", err)
		}
		return remote, repoimpl.NewPostgresChangeFeed(pg.ConnString(), pgRepo.NotifyChannel()), pg.HealthCheck, func() { pg.Close() }

	case config.BackendPostgres:
		connStr, err := cfg.PostgresConnString()
		if err != nil {
			log.Printf("⚠️ %v、ローカルモードで起動します", err)
			return nil, localFeed, nil, noop
		}
		pg, err := database.NewPostgreSQLClient(ctx, connStr)
		if err != nil {
			log.Printf("⚠️ PostgreSQLに接続できないため、ローカルモードで起動します: %v", err)
			return nil, localFeed, nil, noop
		}
		remote := repoimpl.NewPostgresReportRepository(pg, cfg.SpotsTable)
		if err := remote.EnsureSchema(ctx); err != nil {
			log.Printf("⚠️ スキーマの準備に失敗: %v", err)
		}
		return remote, repoimpl.NewPostgresChangeFeed(pg.ConnString(), remote.NotifyChannel()), pg.HealthCheck, func() { pg.Close() }

	case config.BackendFirestore:
		client, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
		if err != nil {
			log.Printf("⚠️ Firestoreクライアントの初期化に失敗、ローカルモードで起動します: %v", err)
			return nil, localFeed, nil, noop
		}
		remote := repoimpl.NewFirestoreReportRepository(client.GetClient(), cfg.SpotsTable)
		feed := repoimpl.NewFirestoreChangeFeed(client.GetClient(), cfg.SpotsTable)
		return remote, feed, nil, func() { client.Close() }

	default:
		return nil, localFeed, nil, noop
	}
}
