package anthropic

// MessagesRequest represents a request to the Anthropic Messages API.
type MessagesRequest struct {
	Model     string      `json:"model"`
	Messages  []Message   `json:"messages"`
	MaxTokens int         `json:"max_tokens"`
	System    []TextBlock `json:"system,omitempty"`
}

// MessagesResponse represents a response from the Anthropic Messages API.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextBlock is a system prompt segment. Marking a block with
// cache_control makes it a cache breakpoint: everything up to and
// including the marked block is eligible for backend prompt caching.
type TextBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl marks a prompt block as a caching breakpoint.
type CacheControl struct {
	Type string `json:"type"`
}

// ContentBlock represents a content block in a response message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage represents token usage information, including prompt-cache activity.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Text concatenates the text content blocks of a response.
func (r *MessagesResponse) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// BatchRequest is one entry in a Message Batches API submission.
type BatchRequest struct {
	CustomID string          `json:"custom_id"`
	Params   MessagesRequest `json:"params"`
}

// Batch describes a submitted message batch.
type Batch struct {
	ID               string             `json:"id"`
	ProcessingStatus string             `json:"processing_status"`
	RequestCounts    BatchRequestCounts `json:"request_counts"`
	ResultsURL       string             `json:"results_url"`
}

// BatchRequestCounts summarizes per-request outcomes within a batch.
type BatchRequestCounts struct {
	Processing int `json:"processing"`
	Succeeded  int `json:"succeeded"`
	Errored    int `json:"errored"`
	Canceled   int `json:"canceled"`
	Expired    int `json:"expired"`
}

// BatchResult is one line of the batch results stream.
type BatchResult struct {
	CustomID string `json:"custom_id"`
	Result   struct {
		Type    string           `json:"type"`
		Message MessagesResponse `json:"message"`
	} `json:"result"`
}
