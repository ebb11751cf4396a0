package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/config"
	"LLMBridge/internal/models"
	"LLMBridge/internal/profilestore"
	"LLMBridge/internal/prompt"
	"LLMBridge/pkg/httpmiddleware"
	"LLMBridge/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// ProfileExtractor 把对话导出转换为用户画像。
type ProfileExtractor interface {
	Extract(ctx context.Context, raw []byte) (models.MemoryProfile, error)
}

// PromptGenerator 生成（可能经过 LLM 增强的）系统提示词。
type PromptGenerator interface {
	Generate(ctx context.Context, p models.MemoryProfile, modelID string) (string, error)
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	cfg       *config.AppConfig
	extractor ProfileExtractor
	engine    *prompt.Engine
	generator PromptGenerator
	profiles  profilestore.Store
	log       *logger.Logger
	proxies   httpmiddleware.TrustedProxies
	now       func() time.Time
}

// NewHandler 创建一个新的 Handler 实例。generator 为空时只使用模板渲染。
func NewHandler(cfg *config.AppConfig, extractor ProfileExtractor, engine *prompt.Engine, generator PromptGenerator, profiles profilestore.Store, log *logger.Logger) *Handler {
	if generator == nil {
		generator = prompt.NewEnhancer(engine, nil, 0, log)
	}
	// 非法的代理列表由 SetupRouter 报错，这里退化为不信任任何代理
	proxies, _ := httpmiddleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	return &Handler{
		cfg:       cfg,
		extractor: extractor,
		engine:    engine,
		generator: generator,
		profiles:  profiles,
		log:       log,
		proxies:   proxies,
		now:       time.Now,
	}
}

// --- Upload ---

// Upload 校验上传的 JSON 文件并返回回执。文件内容不会落盘，也不会出现在响应中。
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded or file is empty"})
		return
	}
	if header.Size > h.cfg.Server.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded or file is empty"})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: apperr.IO.String()}).Error("open upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process the uploaded file"})
		return
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: apperr.IO.String()}).Error("read upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process the uploaded file"})
		return
	}
	defer clear(buf)

	if !isJSONUpload(header.Filename, buf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JSON files are allowed"})
		return
	}
	if !json.Valid(buf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON file"})
		return
	}

	receipt := models.UploadReceipt{
		Message:      "File uploaded successfully",
		Size:         int64(len(buf)),
		OriginalName: filepath.Base(header.Filename),
		ContentHash:  contentHash(buf),
		Uploaded:     true,
	}
	h.log.WithPayload(map[string]interface{}{"content_hash": receipt.ContentHash, "size": receipt.Size}).
		Info("file uploaded")
	c.JSON(http.StatusOK, receipt)
}

// isJSONUpload 接受 .json 扩展名或内容探测为 JSON 的文件。
func isJSONUpload(name string, content []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return true
	}
	return mimetype.Detect(content).Is("application/json")
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}

// --- Extraction ---

// ExtractMemoryRequest 定义了画像提取请求的 JSON 结构。
// fileContent 可以是 JSON 文本字符串，也可以直接是 JSON 值。
type ExtractMemoryRequest struct {
	FileContent json.RawMessage `json:"fileContent"`
	FileName    string          `json:"fileName"`
}

// ExtractMemory 从对话导出中提取画像，并保存到画像存储中。
func (h *Handler) ExtractMemory(c *gin.Context) {
	var req ExtractMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid file content provided"})
		return
	}

	content, ok := fileContent(req.FileContent)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid file content provided"})
		return
	}
	defer clear(content)
	if !json.Valid(content) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON content"})
		return
	}

	profile, err := h.extractor.Extract(c.Request.Context(), content)
	if err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: apperr.KindOf(err).String()}).
			Error("memory extraction failed")
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Failed to extract memory"})
		return
	}

	llmPrompt, err := prompt.ProfileSummary(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract memory"})
		return
	}

	resp := gin.H{"profile": profile, "llmPrompt": llmPrompt}
	if id, err := h.profiles.Put(c.Request.Context(), profile); err != nil {
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "profile_store"}).Warn("profile not stored")
	} else {
		resp["profileId"] = id
	}
	c.JSON(http.StatusOK, resp)
}

// fileContent 解析 fileContent 字段；字符串按 JSON 文本处理。
func fileContent(raw json.RawMessage) ([]byte, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	if raw[0] != '"' {
		return append([]byte(nil), raw...), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil, false
	}
	return []byte(s), true
}

// --- Prompt generation ---

// GeneratePromptRequest 定义了提示词生成请求的 JSON 结构。profile 与 profileId 二选一。
type GeneratePromptRequest struct {
	Profile    json.RawMessage `json:"profile"`
	ProfileID  string          `json:"profileId"`
	Model      string          `json:"model"`
	Regenerate bool            `json:"regenerate"`
}

// GeneratePrompt 为指定模型生成系统提示词。
func (h *Handler) GeneratePrompt(c *gin.Context) {
	var req GeneratePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile and model are required"})
		return
	}

	hasProfile := len(req.Profile) > 0 && !bytes.Equal(bytes.TrimSpace(req.Profile), []byte("null"))
	if strings.TrimSpace(req.Model) == "" || (!hasProfile && req.ProfileID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile and model are required"})
		return
	}

	var (
		profile models.MemoryProfile
		err     error
	)
	if hasProfile {
		profile, err = models.DecodeProfile(req.Profile)
		if err != nil {
			h.invalidProfile(c, err)
			return
		}
	} else {
		profile, err = h.profiles.Get(c.Request.Context(), req.ProfileID)
		if err != nil {
			h.profileLookupFailed(c, err)
			return
		}
	}

	var text string
	if req.Regenerate {
		text, err = h.generator.Generate(c.Request.Context(), profile, req.Model)
	} else {
		text, err = h.engine.Render(profile, req.Model)
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.Validation {
			h.invalidProfile(c, err)
			return
		}
		h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: apperr.KindOf(err).String()}).
			Error("prompt generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate enhanced prompt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"prompt":  text,
		"model":   h.engine.Resolve(req.Model),
	})
}

// --- Profiles ---

// UpdateProfile 整体替换一个画像。带 ?id= 时替换已存储的画像，否则保存为新画像。
func (h *Handler) UpdateProfile(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}
	defer clear(body)

	profile, err := models.DecodeProfile(body)
	if err != nil {
		h.invalidProfile(c, err)
		return
	}

	id := c.Query("id")
	if id != "" {
		err = h.profiles.Replace(c.Request.Context(), id, profile)
	} else {
		id, err = h.profiles.Put(c.Request.Context(), profile)
	}
	if err != nil {
		h.profileLookupFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"profile":   profile,
		"message":   "Profile updated successfully",
		"profileId": id,
	})
}

// GetProfile 返回已存储的画像。
func (h *Handler) GetProfile(c *gin.Context) {
	id := c.Param("id")
	profile, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		h.profileLookupFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "profileId": id})
}

func (h *Handler) invalidProfile(c *gin.Context, err error) {
	// 错误信息只包含字段名，不包含字段值。
	var appErr *apperr.Error
	details := "invalid profile"
	if errors.As(err, &appErr) && appErr.Err != nil {
		details = appErr.Err.Error()
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile", "details": details})
}

func (h *Handler) profileLookupFailed(c *gin.Context, err error) {
	if errors.Is(err, profilestore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "profile_store"}).Error("profile store failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile store unavailable"})
}

// --- Metadata ---

// Health 返回服务状态。X-Forwarded-Proto 只在直连方是受信代理时生效。
func (h *Handler) Health(c *gin.Context) {
	ssl := "http"
	if c.Request.TLS != nil {
		ssl = "https"
	} else if h.proxies.FromProxy(c.Request) && strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		ssl = "https"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"env":       h.cfg.App.Environment,
		"ssl":       ssl,
	})
}

// Models 列出支持的提示词模板。
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  h.engine.Models(),
		"default": prompt.DefaultModel,
	})
}
