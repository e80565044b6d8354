package registry

import "errors"

var (
	// ErrUnknownModel indicates that the requested model id is not registered.
	ErrUnknownModel = errors.New("registry: unknown model id")
	// ErrEmptyRegistry indicates that no models exist at all. It signals a
	// deployment defect rather than a request failure.
	ErrEmptyRegistry = errors.New("registry: model registry is empty")
)

// SingleActiveIndexName names the partial unique index that backs the
// single active model invariant.
const SingleActiveIndexName = "ux_models_single_active"

// Model is a selectable chat-completion backend.
type Model struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Key    string `gorm:"column:key;size:190;not null;uniqueIndex:ux_models_key"`
	Label  string `gorm:"column:label;size:190;not null"`
	Active bool   `gorm:"column:active;not null;default:false"`
}

// TableName provides the explicit table binding for GORM.
func (Model) TableName() string {
	return "models"
}

// SeedCatalog lists the models installed on first bootstrap. Model 1 starts active.
func SeedCatalog() []Model {
	return []Model{
		{ID: 1, Key: "deepseek/deepseek-chat-v3.1:free", Label: "DeepSeek V3.1 (free)", Active: true},
		{ID: 2, Key: "deepseek/deepseek-r1:free", Label: "DeepSeek R1 (free)"},
		{ID: 3, Key: "mistralai/mistral-small-24b-instruct-2501:free", Label: "Mistral Small 24b (free)"},
		{ID: 4, Key: "meta-llama/llama-3.1-8b-instruct:free", Label: "Llama 3.1 8B (free)"},
		{ID: 5, Key: "qwen/qwen3-coder:free", Label: "Qwen3 Coder 480B A35B (free)"},
		{ID: 6, Key: "nvidia/nemotron-nano-12b-v2-v1:free", Label: "Nemotron Nano"},
		{ID: 7, Key: "minimax/minimax-m2:free", Label: "Minimax M2"},
		{ID: 8, Key: "alibaba/tongyi-deepresearch-30b-a3b:free", Label: "Tongyi Deepresearch"},
		{ID: 9, Key: "meituan/longcat-flash-chat:free", Label: "Longcat Flash Chat"},
		{ID: 10, Key: "moonshotai/kimi-k2:free", Label: "Kimi K2"},
	}
}
