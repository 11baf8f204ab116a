package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvforge/internal/api/middleware"
	"cvforge/internal/database"
	"cvforge/internal/metrics"
	"cvforge/internal/pdf"
	"cvforge/internal/resume"
	"cvforge/internal/tasks"
)

// ResumeStorage 是简历处理器需要的对象存储能力子集。
type ResumeStorage interface {
	GenerateDownloadURL(ctx context.Context, objectKey, filename string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	storage     ResumeStorage
	generator   *pdf.Generator
	maxRetry    int
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(db *gorm.DB, asynqClient *asynq.Client, storageClient ResumeStorage, maxRetry int) *ResumeHandler {
	return &ResumeHandler{
		db:          db,
		asynqClient: asynqClient,
		storage:     storageClient,
		generator:   pdf.NewGenerator(),
		maxRetry:    maxRetry,
	}
}

var errInvalidResumeID = errors.New("invalid resume id")

// resumePayload 承载保存简历的请求体。嵌套的 Record 在这里完成
// 字段约束校验，渲染器之后直接信任它。
type resumePayload struct {
	Title  string        `json:"title" binding:"required,max=255"`
	Record resume.Record `json:"record" binding:"required"`
}

type resumeListItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type resumeResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Record    datatypes.JSON `json:"record"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newResumeResponse(row database.Resume) resumeResponse {
	return resumeResponse{
		ID:        row.ID,
		Title:     row.Title,
		Record:    row.Content,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// CreateResume 保存一份新的简历记录。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req resumePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	content, err := json.Marshal(req.Record)
	if err != nil {
		Internal(c, "failed to encode record")
		return
	}

	row := database.Resume{
		Title:   req.Title,
		Content: content,
		UserID:  userID,
		Status:  database.ResumeStatusDraft,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		Internal(c, "failed to create resume")
		return
	}

	c.JSON(http.StatusCreated, newResumeResponse(row))
}

// ListResumes 列出用户全部简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var rows []database.Resume
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		Internal(c, "failed to list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, resumeListItem{
			ID:        r.ID,
			Title:     r.Title,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetResume 返回指定 ID 的简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*row))
}

// UpdateResume 覆盖指定简历，旧的渲染产物随之失效。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var req resumePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	row, err := h.getResumeForUser(ctx, c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	content, err := json.Marshal(req.Record)
	if err != nil {
		Internal(c, "failed to encode record")
		return
	}

	stalePdfKey := row.PdfKey
	updates := map[string]any{
		"title":   req.Title,
		"content": content,
		"pdf_key": "",
		"status":  database.ResumeStatusDraft,
	}
	if err := h.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		Internal(c, "failed to update resume")
		return
	}

	if stalePdfKey != "" {
		if err := h.storage.DeleteObject(ctx, stalePdfKey); err != nil {
			middleware.LoggerFromContext(c).Warn("delete stale pdf failed", slog.Any("error", err))
		}
	}

	if err := h.db.WithContext(ctx).First(row, row.ID).Error; err != nil {
		Internal(c, "failed to reload resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*row))
}

// DeleteResume 删除指定简历及其渲染产物。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	row, err := h.getResumeForUser(ctx, c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.Resume{}, row.ID).Error; err != nil {
		Internal(c, "failed to delete resume")
		return
	}

	if row.PdfKey != "" {
		if err := h.storage.DeleteObject(ctx, row.PdfKey); err != nil {
			middleware.LoggerFromContext(c).Warn("delete pdf object failed", slog.Any("error", err))
		}
	}

	c.Status(http.StatusNoContent)
}

// ExportResume 同步渲染并直接以附件形式返回 PDF。
func (h *ResumeHandler) ExportResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	var record resume.Record
	if err := json.Unmarshal(row.Content, &record); err != nil {
		Internal(c, "failed to decode resume")
		return
	}

	start := time.Now()
	pdfBytes, err := h.generator.Render(&record)
	if err != nil {
		// 不向客户端透出内部错误细节。
		middleware.LoggerFromContext(c).Error("render resume failed", slog.Any("error", err))
		Internal(c, "failed to generate pdf")
		return
	}
	metrics.ObserveRender(time.Since(start), len(pdfBytes))

	filename := pdfFilename(row.Title)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// RenderResume 将渲染任务入队并立即返回 202。
func (h *ResumeHandler) RenderResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	row, err := h.getResumeForUser(ctx, c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewResumeRenderTask(row.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(h.maxRetry))
	if err != nil {
		Internal(c, "failed to enqueue render")
		return
	}

	if err := h.db.WithContext(ctx).Model(row).
		Update("status", database.ResumeStatusRendering).Error; err != nil {
		Internal(c, "failed to mark resume rendering")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "render request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成已渲染 PDF 的预签名下载链接。
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if row.PdfKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	signedURL, err := h.storage.GenerateDownloadURL(c.Request.Context(), row.PdfKey, pdfFilename(row.Title), 5*time.Minute)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *ResumeHandler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidResumeID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}

func (h *ResumeHandler) getResumeForUser(ctx context.Context, idParam string, userID uint) (*database.Resume, error) {
	resumeID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidResumeID
	}

	var row database.Resume
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(resumeID), userID).
		First(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

// pdfFilename 把简历标题归一化成安全的下载文件名。
func pdfFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(title))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "resume"
	}
	return cleaned + ".pdf"
}
