package llm

// Usage holds token usage for one completion call.
type Usage struct {
	InputTokens     int `json:"input_tokens"`
	OutputTokens    int `json:"output_tokens"`
	TotalTokens     int `json:"total_tokens"`
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ChatResult is the completion text plus its usage.
type ChatResult struct {
	Text  string
	Usage Usage
}
