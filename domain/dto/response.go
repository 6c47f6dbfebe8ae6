package dto

// Issue is one failed validation rule
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Res is the envelope every JSON endpoint answers with
type Res struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Error   string  `json:"error,omitempty"`
	Code    string  `json:"code,omitempty"`
	Details string  `json:"details,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

type HealthRes struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks,omitempty"`
	Composer string            `json:"composer"`
}
