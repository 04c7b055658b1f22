package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"SiteFM/core/audio"
	"SiteFM/core/bundle"
	"SiteFM/logger"
)

// StaticHandler 提供构建产物目录的预览访问
type StaticHandler struct {
	root string
}

// NewStaticHandler 创建 StaticHandler 实例
func NewStaticHandler(root string) *StaticHandler {
	return &StaticHandler{root: root}
}

// ServeHTTP 实现 http.Handler 接口
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}
	name := filepath.Join(h.root, filepath.FromSlash(rel))

	f, err := os.Open(name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType(rel))
	w.Header().Set("Cache-Control", cacheControl(rel))

	// ServeContent 处理 Range 请求，音频拖动进度依赖它
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	logger.Debug("served", logger.String("path", rel), logger.String("range", r.Header.Get("Range")))
}

// cacheControl 清单每次构建都会变化，不缓存
func cacheControl(rel string) string {
	switch {
	case rel == bundle.ManifestName, rel == "index.html", rel == "config.json":
		return "no-cache"
	case strings.HasPrefix(rel, "audio/"):
		return "public, max-age=3600"
	default:
		return "no-cache"
	}
}
