package models

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	StoreDriver string `json:"store_driver"`
	Degraded    bool   `json:"degraded"`
	Reason      string `json:"reason,omitempty"`
	Database    string `json:"database,omitempty"`
}

type AttachmentResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}
