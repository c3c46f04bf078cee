package http

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// FieldError describes one rejected request field. Field is the name the
// client sent (query, path or JSON key).
type FieldError struct {
	Code    string `json:"code" example:"ERR_REQUIRED"`
	Field   string `json:"field,omitempty" example:"symbol"`
	Message string `json:"message" example:"symbol is required"`
	Param   string `json:"param,omitempty" example:"1000"`
}

// ListData wraps list endpoints.
type ListData struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}
