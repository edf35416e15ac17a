package usage

import "time"

// TokenUsage is the DB row holding per-day aggregated token counts.
type TokenUsage struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	UsageDate       time.Time `gorm:"column:usage_date;type:date"`
	InputTokens     int64     `gorm:"column:input_tokens"`
	OutputTokens    int64     `gorm:"column:output_tokens"`
	ReasoningTokens int64     `gorm:"column:reasoning_tokens"`
	RequestCount    int64     `gorm:"column:request_count"`
	Version         int64     `gorm:"column:version"`
}

// TableName returns the table used by GORM.
func (TokenUsage) TableName() string {
	return "token_usage"
}

// DailyUsage is the per-day usage view returned to callers.
type DailyUsage struct {
	UsageDate       time.Time
	InputTokens     int64
	OutputTokens    int64
	ReasoningTokens int64
	RequestCount    int64
}

// TotalTokens returns input plus output tokens.
func (d DailyUsage) TotalTokens() int64 {
	return d.InputTokens + d.OutputTokens
}
