package model

// ChangeOp リアルタイムフィードの操作種別
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
	// ChangeResync フィードが切断されイベントを取りこぼした可能性がある
	ChangeResync ChangeOp = "resync"
)

// ChangeEvent 永続化層から通知される変更イベント
type ChangeEvent struct {
	Op     ChangeOp
	Report Report // insert / update の場合の行
	ID     string // delete の場合の対象ID（insert/updateではReport.IDと同じ）
}

// TargetID イベントの対象スポットIDを返す
func (e ChangeEvent) TargetID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Report.ID
}
