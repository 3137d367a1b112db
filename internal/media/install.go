package media

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const ffmpegReleaseVersion = "6.1"

var releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

// ResolveOrInstall resolves the tools like Resolve. When either is missing
// it uses a cached prebuilt copy under cacheDir, downloading it first if
// needed. An empty cacheDir means the user cache directory.
func ResolveOrInstall(ctx context.Context, ffmpegPath, ffprobePath, cacheDir string) (Tools, error) {
	tools, err := Resolve(ffmpegPath, ffprobePath)
	if err == nil || !errors.Is(err, ErrToolNotFound) {
		return tools, err
	}
	installed, err := install(ctx, http.DefaultClient, cacheDir, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return Tools{}, err
	}
	if ffmpegPath != "" {
		installed.FFmpeg = ffmpegPath
	}
	if ffprobePath != "" {
		installed.FFprobe = ffprobePath
	}
	return installed, nil
}

func installDir(cacheDir, goos, goarch string) string {
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil || dir == "" {
			dir = os.TempDir()
		}
		cacheDir = filepath.Join(dir, "chaptrack")
	}
	return filepath.Join(cacheDir, "ffmpeg", ffmpegReleaseVersion, goos, goarch)
}

func install(ctx context.Context, client *http.Client, cacheDir, goos, goarch string) (Tools, error) {
	assetName, err := assetForPlatform(goos, goarch)
	if err != nil {
		return Tools{}, err
	}
	dir := installDir(cacheDir, goos, goarch)

	suffix := executableSuffix(goos)
	tools := Tools{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+suffix),
		FFprobe: filepath.Join(dir, "ffprobe"+suffix),
	}
	if binariesExist(tools) {
		return tools, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Tools{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	if err := download(ctx, client, assetName, dir, suffix); err != nil {
		return Tools{}, err
	}
	if !binariesExist(tools) {
		return Tools{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if goos != "windows" {
		for _, path := range []string{tools.FFmpeg, tools.FFprobe} {
			if err := os.Chmod(path, 0o755); err != nil {
				return Tools{}, fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
			}
		}
	}
	return tools, nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf("%w: no prebuilt ffmpeg for %s/%s", ErrToolNotFound, goos, goarch)
	}
}

func download(ctx context.Context, client *http.Client, assetName, dir, suffix string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, ffmpegReleaseVersion, assetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp("", "chaptrack-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, dir, suffix); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

// extractArchive copies the ffmpeg and ffprobe entries of a zip archive
// into dir, ignoring everything else.
func extractArchive(archivePath, dir, suffix string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	found := map[string]bool{}
	for _, file := range zipReader.File {
		name := strings.ToLower(filepath.Base(file.Name))
		tool := strings.TrimSuffix(name, ".exe")
		if tool != "ffmpeg" && tool != "ffprobe" {
			continue
		}
		if err := extractZipFile(file, filepath.Join(dir, tool+suffix)); err != nil {
			return err
		}
		found[tool] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return fmt.Errorf("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

func binariesExist(t Tools) bool {
	return fileExists(t.FFmpeg) && fileExists(t.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
