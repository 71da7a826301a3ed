package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
)

// PostgresChangeFeed LISTEN/NOTIFY でテーブルの変更を購読する
type PostgresChangeFeed struct {
	connStr string
	channel string
}

func NewPostgresChangeFeed(connStr, channel string) repository.ChangeFeed {
	return &PostgresChangeFeed{
		connStr: connStr,
		channel: channel,
	}
}

// Subscribe 変更通知を ChangeEvent に変換して流す
// 再接続時は通知を取りこぼした可能性があるため resync を流す
func (f *PostgresChangeFeed) Subscribe(ctx context.Context) (<-chan model.ChangeEvent, error) {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("⚠️ LISTEN接続でエラー (event=%d): %v", ev, err)
		}
	}

	listener := pq.NewListener(f.connStr, time.Second, time.Minute, reportProblem)
	if err := listener.Listen(f.channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("チャネル %s のLISTENに失敗: %w", f.channel, err)
	}
	log.Printf("📡 PostgreSQLの変更通知を購読開始: %s", f.channel)

	events := make(chan model.ChangeEvent, 16)
	go func() {
		defer close(events)
		defer listener.Close()

		ticker := time.NewTicker(90 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				var event model.ChangeEvent
				if n == nil {
					event = model.ChangeEvent{Op: model.ChangeResync}
				} else {
					decoded, err := DecodeNotification(n.Extra)
					if err != nil {
						log.Printf("⚠️ 変更通知を解析できません: %v", err)
						continue
					}
					event = decoded
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			case <-ticker.C:
				go listener.Ping()
			}
		}
	}()

	return events, nil
}

type notificationPayload struct {
	Op     string                 `json:"op"`
	ID     string                 `json:"id"`
	Record map[string]interface{} `json:"record"`
}

// DecodeNotification トリガーが送るJSONペイロードを ChangeEvent に変換する
func DecodeNotification(payload string) (model.ChangeEvent, error) {
	var p notificationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("通知ペイロードのJSONアンマーシャル失敗: %w", err)
	}

	switch model.ChangeOp(p.Op) {
	case model.ChangeDelete:
		if p.ID == "" {
			return model.ChangeEvent{}, fmt.Errorf("deleteの通知にidがありません")
		}
		return model.ChangeEvent{Op: model.ChangeDelete, ID: p.ID}, nil

	case model.ChangeInsert, model.ChangeUpdate:
		report, err := helper.DecodeReportRow(p.Record)
		if err != nil {
			return model.ChangeEvent{}, err
		}
		return model.ChangeEvent{Op: model.ChangeOp(p.Op), Report: report, ID: report.ID}, nil

	default:
		return model.ChangeEvent{}, fmt.Errorf("不明な操作種別: %q", p.Op)
	}
}
