package models

// UploadReceipt 是 /api/upload 的响应体，不包含文件内容。
type UploadReceipt struct {
	Message      string `json:"message"`
	Size         int64  `json:"size"`
	OriginalName string `json:"originalName"`
	ContentHash  string `json:"contentHash"` // SHA-256 十六进制的前 16 位
	Uploaded     bool   `json:"uploaded"`
}
