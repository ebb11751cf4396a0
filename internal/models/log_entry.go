package models

// LogEntry 定义了用于结构化日志和审计事件的统一数据格式。
// 任何字段都不得包含上传文件或画像的原文。
type LogEntry struct {
	// ServiceName 是产生这条日志的组件名称，例如 "llmbridge-api"。
	ServiceName string `json:"service_name"`

	// TraceID 用于串联同一个请求产生的多条日志。
	TraceID string `json:"trace_id,omitempty"`

	// RequestInfo 包含了触发此日志的 HTTP 请求的详细信息。
	RequestInfo *RequestInfo `json:"request_info,omitempty"`

	// Error 包含了详细的错误信息。
	Error *ErrorInfo `json:"error,omitempty"`

	// Payload 存放不含敏感内容的附加数据（哈希、大小、耗时等）。
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RequestInfo 存储了关于 HTTP 请求的上下文信息。
type RequestInfo struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	Status        int    `json:"status,omitempty"`
	DurationMs    int64  `json:"duration_ms,omitempty"`
	RemoteAddr    string `json:"remote_addr"`
	UserAgent     string `json:"user_agent"`
	ContentLength int64  `json:"content_length"`
	HasFileUpload bool   `json:"has_file_upload"`
}

// ErrorInfo 存储了关于错误的结构化信息。
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`        // 例如 "io_error", "secure_delete"
	StatusCode int    `json:"status_code,omitempty"` // 相关的HTTP状态码
}
