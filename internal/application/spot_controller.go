package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
	"SpotMap-App/internal/domain/service"
)

var (
	// ErrSpotNotFound 指定IDのスポットがワーキングセットにない
	ErrSpotNotFound = errors.New("スポットが見つかりません")
	// ErrVoteLocked 前日以前または取り下げ済みのスポットには投票できない
	ErrVoteLocked = errors.New("このスポットには投票できません")
)

// remoteWriteTimeout 投票の非同期書き込みのタイムアウト
const remoteWriteTimeout = 10 * time.Second

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// SpotFilter 表示データを絞り込む条件（ゼロ値は絞り込みなし）
type SpotFilter struct {
	Query        string     // 店名・住所の部分一致
	Bound        *orb.Bound // 表示範囲
	Near         *orb.Point // 中心点 [lng, lat]
	RadiusMeters float64    // Near からの半径
}

// ControllerOptions 表示データ生成の設定
type ControllerOptions struct {
	RecencyWindow time.Duration
	Location      *time.Location
	Locale        string
	Dedup         service.DedupOptions
	Now           func() time.Time
}

// SpotController スポットマップのワーキングセットを管理するサービス
type SpotController interface {
	// Load ストアから全件を読み込む（利用できなければサンプルデータ）
	Load(ctx context.Context) error

	// Create スポットを投稿し、ワーキングセットの先頭に追加する
	Create(ctx context.Context, req *model.CreateSpotRequest) (*model.Report, error)

	// Endorse 「本当」票をトグルする
	Endorse(ctx context.Context, id string) (*model.VoteResponse, error)

	// Dispute 「嘘」票をトグルする
	Dispute(ctx context.Context, id string) (*model.VoteResponse, error)

	// ApplyEvent 変更イベントをワーキングセットに反映する
	ApplyEvent(event model.ChangeEvent)

	// Run ctxが終了するまで変更フィードを購読する
	Run(ctx context.Context, feed repository.ChangeFeed) error

	// Projection 現在のワーキングセットから表示用データを生成する
	Projection(filter SpotFilter) model.Projection

	// Subscribe ワーキングセットが変わるたびにバージョンを通知するチャネルを返す
	Subscribe() (<-chan uint64, func())

	// Votes このプロファイルの投票記録
	Votes() map[string]model.VoteKind

	// Mode ストアの動作モード
	Mode() string

	// Flush 実行中のリモート書き込みの完了を待つ
	Flush()
}

// spotControllerImpl SpotControllerの実装
type spotControllerImpl struct {
	store   repository.ReportStore
	votes   *service.VoteReconciler
	options ControllerOptions

	mu      sync.Mutex
	set     []model.Report
	version uint64

	subMu       sync.Mutex
	subscribers map[chan uint64]struct{}

	writeMu      sync.Mutex
	writeQueue   []pendingWrite
	writeRunning bool
	writes       sync.WaitGroup
}

// pendingWrite リモートへ送る投票カウンタ
type pendingWrite struct {
	id    string
	patch model.ReportPatch
}

// NewSpotController SpotControllerの新しいインスタンスを作成
func NewSpotController(store repository.ReportStore, votes *service.VoteReconciler, options ControllerOptions) SpotController {
	if options.RecencyWindow <= 0 {
		options.RecencyWindow = service.DefaultRecencyWindow
	}
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.Dedup == (service.DedupOptions{}) {
		options.Dedup = service.DefaultDedupOptions
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &spotControllerImpl{
		store:       store,
		votes:       votes,
		options:     options,
		set:         []model.Report{},
		subscribers: make(map[chan uint64]struct{}),
	}
}

func (c *spotControllerImpl) now() time.Time {
	return c.options.Now().In(c.options.Location)
}

// Load ストアから全件を読み込んでワーキングセットを置き換える
func (c *spotControllerImpl) Load(ctx context.Context) error {
	reports, err := c.store.LoadAll(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNoReports) {
			return fmt.Errorf("スポットデータの読み込みに失敗: %w", err)
		}
		log.Printf("⚠️ 利用できるスポットデータがないため、サンプルデータを表示します")
		reports = SampleSpots(c.now())
	}

	sanitized := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		sanitized = append(sanitized, helper.SanitizeReport(r))
	}

	c.mu.Lock()
	c.set = service.SortNewestFirst(sanitized)
	c.version++
	version := c.version
	c.mu.Unlock()

	log.Printf("✅ %d件のスポットを読み込みました (mode=%s)", len(sanitized), c.store.Mode())
	c.notify(version)
	return nil
}

// Create 入力を検証してスポットを保存する
// リモート保存に失敗してもローカルに保存したレコードで先頭に追加する
func (c *spotControllerImpl) Create(ctx context.Context, req *model.CreateSpotRequest) (*model.Report, error) {
	if err := validateCreateSpotRequest(req); err != nil {
		return nil, err
	}

	addedBy := strings.TrimSpace(req.AddedBy)
	if addedBy == "" {
		addedBy = model.DefaultAddedBy
	}
	draft := model.Report{
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		Category:    model.NormalizeCategory(strings.TrimSpace(req.Category)),
		Description: strings.TrimSpace(req.Description),
		AddedBy:     addedBy,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		IsActive:    true,
		Rating:      req.Rating,
		CreatedAt:   c.options.Now(),
	}

	created, err := c.store.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("スポットの作成に失敗: %w", err)
	}

	c.mu.Lock()
	c.set = service.PrependIfAbsent(c.set, created)
	c.version++
	version := c.version
	c.mu.Unlock()

	log.Printf("✅ スポットを投稿しました: %s (%s)", created.ID, created.Name)
	c.notify(version)
	return &created, nil
}

func validateCreateSpotRequest(req *model.CreateSpotRequest) error {
	if req == nil {
		return &ValidationError{Field: "body", Message: "リクエストが空です"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "店名は必須です"}
	}
	if strings.TrimSpace(req.Address) == "" {
		return &ValidationError{Field: "address", Message: "住所は必須です"}
	}
	if req.Lat == nil || req.Lng == nil {
		return &ValidationError{Field: "location", Message: "位置情報は必須です"}
	}
	if !helper.IsValidCoordinate(*req.Lat, *req.Lng) {
		return &ValidationError{Field: "location", Message: "緯度は-90から90、経度は-180から180の範囲で指定してください"}
	}
	return nil
}

func (c *spotControllerImpl) Endorse(ctx context.Context, id string) (*model.VoteResponse, error) {
	return c.vote(id, model.VoteEndorse)
}

func (c *spotControllerImpl) Dispute(ctx context.Context, id string) (*model.VoteResponse, error) {
	return c.vote(id, model.VoteDispute)
}

// vote 楽観的にカウンタを更新してから、リモートへの書き込みを投票順に非同期で行う
// リモートへの書き込みが失敗してもロールバックしない
func (c *spotControllerImpl) vote(id string, action model.VoteKind) (*model.VoteResponse, error) {
	c.mu.Lock()
	index := helper.FindByID(c.set, id)
	if index < 0 {
		c.mu.Unlock()
		return nil, ErrSpotNotFound
	}
	report := c.set[index]
	if !report.IsActive || service.IsStale(report.CreatedAt, c.now()) {
		c.mu.Unlock()
		return nil, ErrVoteLocked
	}

	var outcome model.VoteOutcome
	if action == model.VoteEndorse {
		outcome = c.votes.ToggleEndorse(id, report.Likes, report.Dislikes)
	} else {
		outcome = c.votes.ToggleDispute(id, report.Likes, report.Dislikes)
	}
	c.set = service.ApplyOptimisticVote(c.set, id, outcome)
	c.version++
	version := c.version
	likes, dislikes := outcome.Likes, outcome.Dislikes
	c.enqueueWrite(pendingWrite{id: id, patch: model.ReportPatch{Likes: &likes, Dislikes: &dislikes}})
	c.mu.Unlock()

	c.notify(version)

	return &model.VoteResponse{
		ID:       id,
		Likes:    outcome.Likes,
		Dislikes: outcome.Dislikes,
		Vote:     outcome.Vote,
	}, nil
}

// enqueueWrite 書き込みをキューに積む（c.mu を保持したまま呼ぶ）
// キューは1つのgoroutineが投票順に処理する
func (c *spotControllerImpl) enqueueWrite(w pendingWrite) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.writes.Add(1)
	c.writeQueue = append(c.writeQueue, w)
	if !c.writeRunning {
		c.writeRunning = true
		go c.drainWrites()
	}
}

func (c *spotControllerImpl) drainWrites() {
	for {
		c.writeMu.Lock()
		if len(c.writeQueue) == 0 {
			c.writeRunning = false
			c.writeMu.Unlock()
			return
		}
		w := c.writeQueue[0]
		c.writeQueue = c.writeQueue[1:]
		c.writeMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
		if !c.store.Update(ctx, w.id, w.patch) {
			log.Printf("⚠️ 投票の保存に失敗しました（表示上の値はそのまま）: %s", w.id)
		}
		cancel()
		c.writes.Done()
	}
}

func (c *spotControllerImpl) ApplyEvent(event model.ChangeEvent) {
	c.mu.Lock()
	c.set = service.ApplyChange(c.set, event)
	c.version++
	version := c.version
	c.mu.Unlock()

	c.notify(version)
}

// Run 変更フィードのイベントを到着順に反映する
// resync を受け取った場合はストアから再読み込みする
func (c *spotControllerImpl) Run(ctx context.Context, feed repository.ChangeFeed) error {
	events, err := feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("変更フィードの購読に失敗: %w", err)
	}

	for event := range events {
		if event.Op == model.ChangeResync {
			log.Printf("📡 変更フィードから再同期の要求があったため再読み込みします")
			if err := c.Load(ctx); err != nil {
				log.Printf("⚠️ 再読み込みに失敗: %v", err)
			}
			continue
		}
		c.ApplyEvent(event)
	}
	return ctx.Err()
}

func (c *spotControllerImpl) Projection(filter SpotFilter) model.Projection {
	c.mu.Lock()
	reports := make([]model.Report, len(c.set))
	copy(reports, c.set)
	version := c.version
	c.mu.Unlock()

	projection := service.BuildProjection(filter.apply(reports), service.RankOptions{
		Now:           c.now(),
		RecencyWindow: c.options.RecencyWindow,
		Dedup:         c.options.Dedup,
		Labeler:       service.AgeLabeler{Locale: c.options.Locale},
		Votes:         c.votes.Votes(),
	})
	projection.Version = version
	return projection
}

// apply 検索語・表示範囲・中心からの距離で絞り込む（真の座標で判定）
func (f SpotFilter) apply(reports []model.Report) []model.Report {
	filtered := helper.FilterByQuery(reports, f.Query)
	if f.Bound == nil && f.Near == nil {
		return filtered
	}

	out := make([]model.Report, 0, len(filtered))
	for _, r := range filtered {
		point := orb.Point{r.Lng, r.Lat}
		if f.Bound != nil && !f.Bound.Contains(point) {
			continue
		}
		if f.Near != nil && geo.Distance(*f.Near, point) > f.RadiusMeters {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (c *spotControllerImpl) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subscribers, ch)
			c.subMu.Unlock()
		})
	}
	return ch, cancel
}

// notify 購読者に最新バージョンを通知する（受信側が遅れている場合は古い通知を捨てる）
func (c *spotControllerImpl) notify(version uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- version:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- version:
			default:
			}
		}
	}
}

func (c *spotControllerImpl) Votes() map[string]model.VoteKind {
	return c.votes.Votes()
}

func (c *spotControllerImpl) Mode() string {
	return c.store.Mode()
}

func (c *spotControllerImpl) Flush() {
	c.writes.Wait()
}
