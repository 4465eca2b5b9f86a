package entities

// ErrorResponse represents API error responses
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Video is an education hub search result.
type Video struct {
	Title   string `json:"title"`
	VideoID string `json:"videoId"`
}
