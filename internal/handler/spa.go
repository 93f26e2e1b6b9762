package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler はシングルページアプリケーションの静的ファイルを配信する。
// リクエストパスに対応するファイルが存在すればそれを、存在しなければ
// index.htmlを返す（クライアント側ルーティングのためのフォールバック）。
type SPAHandler struct {
	staticDir string
}

// NewSPAHandler はSPAHandlerを生成する。
func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{staticDir: staticDir}
}

// ServeHTTP はhttp.Handlerを実装する。
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// パストラバーサルを防ぐため、クリーンな相対パスに正規化する
	relPath := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	if relPath == "" {
		relPath = "index.html"
	}

	filePath := filepath.Join(h.staticDir, relPath)
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		// 未知のパスはindex.htmlにフォールバックする
		http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
		return
	}

	http.ServeFile(w, r, filePath)
}
