package model

// GenerationResult is the outcome of a single provider generate call.
// A failed result carries a non-empty Error; a successful result carries
// FilePath or Data (or both). Vendor errors are reported verbatim.
// TimedOut marks a failure caused by an exhausted polling budget: the
// vendor may still finish the generation, so the job stays in flight.
type GenerationResult struct {
	Success         bool           `json:"success"`
	Provider        string         `json:"provider"`
	ContentType     ContentType    `json:"content_type"`
	FilePath        string         `json:"file_path,omitempty"`
	Data            []byte         `json:"-"`
	GenerationID    string         `json:"generation_id,omitempty"`
	Error           string         `json:"error,omitempty"`
	TimedOut        bool           `json:"timed_out,omitempty"`
	DurationSeconds int            `json:"duration_seconds,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Failure builds a failed result for the given provider and content type.
func Failure(provider string, contentType ContentType, errMsg string) *GenerationResult {
	return &GenerationResult{
		Success:     false,
		Provider:    provider,
		ContentType: contentType,
		Error:       errMsg,
	}
}
