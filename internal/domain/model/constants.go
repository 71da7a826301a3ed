package model

// CategoryConstants はアプリケーションで使用する料理カテゴリの定数
const (
	CategoryKacchiBiryani = "kacchi_biryani"
	CategoryTehari        = "tehari"
	CategoryMorogPolao    = "morog_polao"
	CategoryKhichuri      = "khichuri"
	CategoryOther         = "other"
)

// CategoryNameMap はカテゴリIDから表示名（ベンガル語）へのマッピング
var CategoryNameMap = map[string]string{
	CategoryKacchiBiryani: "কাচ্চি বিরিয়ানি",
	CategoryTehari:        "তেহারি",
	CategoryMorogPolao:    "মোরগ পোলাও",
	CategoryKhichuri:      "খিচুড়ি",
	CategoryOther:         "অন্যান্য",
}

// CategoryStyle マーカー描画用の色とアイコン
type CategoryStyle struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// CategoryStyleMap はカテゴリIDからマーカースタイルへのマッピング
var CategoryStyleMap = map[string]CategoryStyle{
	CategoryKacchiBiryani: {Color: "#e74c3c", Icon: "🍖"},
	CategoryTehari:        {Color: "#27ae60", Icon: "🍛"},
	CategoryMorogPolao:    {Color: "#f39c12", Icon: "🍗"},
	CategoryKhichuri:      {Color: "#f1c40f", Icon: "🍲"},
	CategoryOther:         {Color: "#34495e", Icon: "🍽️"},
}

// NormalizeCategory はカテゴリIDまたは表示名を正規のカテゴリIDに変換する
// 不明な値は "other" になる
func NormalizeCategory(category string) string {
	if _, ok := CategoryNameMap[category]; ok {
		return category
	}
	for id, name := range CategoryNameMap {
		if name == category {
			return id
		}
	}
	return CategoryOther
}

// GetCategoryName はカテゴリIDから表示名を取得する
func GetCategoryName(category string) string {
	if name, ok := CategoryNameMap[NormalizeCategory(category)]; ok {
		return name
	}
	return category
}

// GetCategoryStyle はカテゴリIDからマーカースタイルを取得する
func GetCategoryStyle(category string) CategoryStyle {
	return CategoryStyleMap[NormalizeCategory(category)]
}

// GetAllCategories は全カテゴリの一覧を取得する
func GetAllCategories() []string {
	return []string{
		CategoryKacchiBiryani,
		CategoryTehari,
		CategoryMorogPolao,
		CategoryKhichuri,
		CategoryOther,
	}
}

// CategoryInfo カテゴリ選択用の表示情報
type CategoryInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// GetCategoryInfos は全カテゴリの表示情報を定義順に返す
func GetCategoryInfos() []CategoryInfo {
	categories := GetAllCategories()
	infos := make([]CategoryInfo, 0, len(categories))
	for _, id := range categories {
		style := GetCategoryStyle(id)
		infos = append(infos, CategoryInfo{
			ID:    id,
			Label: GetCategoryName(id),
			Color: style.Color,
			Icon:  style.Icon,
		})
	}
	return infos
}
