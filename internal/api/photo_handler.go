package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cvforge/internal/storage"
)

// 照片只接受渲染器能解码的格式。
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoHandler 负责头像照片的上传与读取。
type PhotoHandler struct {
	Storage   *storage.Client
	Logger    *slog.Logger
	ClamdAddr string
	MaxBytes  int64
}

// NewPhotoHandler 返回 PhotoHandler 实例。ClamdAddr 为空时跳过病毒扫描。
func NewPhotoHandler(storageClient *storage.Client, logger *slog.Logger, clamdAddr string, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{
		Storage:   storageClient,
		Logger:    logger,
		ClamdAddr: clamdAddr,
		MaxBytes:  maxBytes,
	}
}

// UploadPhoto 处理受保护的照片上传，并在上传前扫描病毒。
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.MaxBytes > 0 && file.Size > h.MaxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.MaxBytes))
		return
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(fileReader)
	fileReader.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}

	contentType := http.DetectContentType(data)
	ext, allowed := allowedPhotoTypes[contentType]
	if !allowed {
		BadRequest(c, "unsupported image type")
		return
	}

	if h.ClamdAddr != "" {
		clean, err := h.scanPhoto(data)
		if err != nil {
			h.Logger.Error("scan photo", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	objectKey := fmt.Sprintf("user-photos/%d/%s%s", userID, uuid.NewString(), ext)
	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		h.Logger.Error("upload photo", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// GetPhoto 以 data URI 形式返回照片，前端可直接嵌入简历记录。
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	prefix := fmt.Sprintf("user-photos/%d/", userID)
	if !strings.HasPrefix(objectKey, prefix) {
		BadRequest(c, "invalid object key")
		return
	}

	obj, err := h.Storage.GetObject(c.Request.Context(), objectKey)
	if err != nil {
		Internal(c, "failed to fetch photo")
		return
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "photo not found")
			return
		}
		Internal(c, "failed to read photo")
		return
	}

	contentType := http.DetectContentType(data)
	if _, allowed := allowedPhotoTypes[contentType]; !allowed {
		Internal(c, "stored object is not an image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataUri": fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
	})
}

func (h *PhotoHandler) scanPhoto(data []byte) (bool, error) {
	clamdClient := clamd.NewClamd(h.ClamdAddr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamdClient.ScanStream(bytes.NewReader(data), abortChan)
	if err != nil {
		return false, err
	}

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}
