package handlers

// WeatherQuery represents a direct weather lookup request
type WeatherQuery struct {
	City  string `form:"city" json:"city" binding:"required"`
	Units string `form:"units" json:"units" binding:"omitempty,oneof=metric imperial"`
}

// ErrorResponse carries a user-safe failure message; Code is the failure
// kind for programmatic callers
type ErrorResponse struct {
	Error   string      `json:"error" validate:"required,min=1,max=500"`
	Code    string      `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details interface{} `json:"details,omitempty"`
}

// ToolInfo describes a registered tool to the host runtime
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ToolListResponse struct {
	Tools []ToolInfo `json:"tools"`
}

type ToolInvokeResponse struct {
	Result map[string]any `json:"result"`
}

// HealthResponse represents health check response with validation
type HealthResponse struct {
	Status    string `json:"status" validate:"required,oneof=ok alive ready degraded unavailable"`
	Uptime    string `json:"uptime" validate:"required"`
	Timestamp string `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
