package domain

type CompletionRequest struct {
	Config   ModelConfig
	Messages []Message
	Tools    []ToolDefinition
}

type CompletionResponse struct {
	Message      Message
	FinishReason string
}
