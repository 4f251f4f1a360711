package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/logger"

	"github.com/google/uuid"
)

var allowedUploadScenes = map[string]struct{}{
	"product":   {},
	"promotion": {},
	"category":  {},
	"common":    {},
}

// ImageStorage 图片存储
type ImageStorage interface {
	SaveFile(file *multipart.FileHeader, scene string) (string, error)
	Delete(url string) error
}

// UploadService 文件上传服务
type UploadService struct {
	cfg   *config.Config
	clock Clock
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg, clock: SystemClock}
}

func (s *UploadService) baseDir() string {
	if dir := strings.TrimSpace(s.cfg.Upload.Dir); dir != "" {
		return dir
	}
	return "uploads"
}

func (s *UploadService) publicPrefix() string {
	prefix := strings.TrimRight(strings.TrimSpace(s.cfg.Upload.PublicPrefix), "/")
	if prefix == "" {
		return "/uploads"
	}
	return prefix
}

// SaveFile 保存上传的文件，返回对外访问路径
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	if file == nil || file.Size <= 0 {
		return "", ErrUploadEmpty
	}
	if s.cfg.Upload.MaxSize > 0 && file.Size > s.cfg.Upload.MaxSize {
		return "", fmt.Errorf("%w（最大 %d MB）", ErrUploadTooLarge, s.cfg.Upload.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.Upload.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.Upload.AllowedExtensions) {
			return "", fmt.Errorf("%w: %s", ErrUploadTypeInvalid, ext)
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(buffer[:n])
	if len(s.cfg.Upload.AllowedTypes) > 0 && !isAllowedContentType(contentType, s.cfg.Upload.AllowedTypes) {
		return "", fmt.Errorf("%w: %s", ErrUploadTypeInvalid, contentType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	normalizedScene := normalizeUploadScene(scene)
	filename := uuid.New().String() + ext
	now := s.clock.Now()
	year := now.Format("2006")
	month := now.Format("01")
	savePath := filepath.Join(s.baseDir(), normalizedScene, year, month, filename)

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	// 返回相对路径，由前端根据环境配置拼接完整 URL
	return path.Join(s.publicPrefix(), normalizedScene, year, month, filename), nil
}

// Delete 删除此前保存的文件，非本服务生成的地址直接忽略
func (s *UploadService) Delete(url string) error {
	localPath, ok := s.resolveLocalPath(url)
	if !ok {
		return nil
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *UploadService) resolveLocalPath(url string) (string, bool) {
	trimmed := strings.TrimSpace(url)
	prefix := s.publicPrefix() + "/"
	if trimmed == "" || !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	relative := path.Clean("/" + strings.TrimPrefix(trimmed, prefix))
	if relative == "/" {
		return "", false
	}
	return filepath.Join(s.baseDir(), filepath.FromSlash(strings.TrimPrefix(relative, "/"))), true
}

func normalizeUploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "common"
	}
	if _, ok := allowedUploadScenes[value]; ok {
		return value
	}
	return "common"
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func isAllowedContentType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(contentType, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

// deleteImageAsync 异步清理旧图片，失败只记录日志
func deleteImageAsync(storage ImageStorage, url, event string, kv ...interface{}) {
	if storage == nil || strings.TrimSpace(url) == "" {
		return
	}
	go func() {
		if err := storage.Delete(url); err != nil {
			fields := append([]interface{}{"url", url, "error", err}, kv...)
			logger.Warnw(event, fields...)
		}
	}()
}
