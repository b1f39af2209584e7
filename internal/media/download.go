package media

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Downloader saves a chosen photo locally so the follow-along screen
// does not depend on the remote host staying up.
type Downloader struct {
	assetsDir  string
	httpClient *http.Client
}

// NewDownloader creates a downloader writing into assetsDir.
func NewDownloader(assetsDir string) *Downloader {
	return &Downloader{
		assetsDir:  assetsDir,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9_가-힣]`)

func slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.Join(strings.Fields(text), "_")
	text = slugStrip.ReplaceAllString(text, "")
	if text == "" {
		text = "menu"
	}
	return text
}

// Download fetches the image and returns the local path.
func (d *Downloader) Download(url, menuName string) (string, error) {
	resp, err := d.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}

	ext := ".jpg"
	switch ct := resp.Header.Get("Content-Type"); {
	case strings.Contains(ct, "png"):
		ext = ".png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		ext = ".jpg"
	default:
		if strings.HasSuffix(strings.ToLower(url), ".png") {
			ext = ".png"
		}
	}

	if err := os.MkdirAll(d.assetsDir, 0o755); err != nil {
		return "", fmt.Errorf("create assets dir: %w", err)
	}

	hash := fmt.Sprintf("%x", sha1.Sum([]byte(url)))[:8]
	filename := fmt.Sprintf("menu_%s_%s%s", slugify(menuName), hash, ext)
	path := filepath.Join(d.assetsDir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}
