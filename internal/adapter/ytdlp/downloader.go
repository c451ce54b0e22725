package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/executor"
	"vidquiz/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// YtDlpFetcher implements domain.MediaFetcher using the local yt-dlp binary.
type YtDlpFetcher struct {
	binaryPath string
	workDir    string
	exec       executor.Executor
}

// NewYtDlpFetcher creates a new fetcher. The work directory must exist and be
// writable; every download gets a unique file name inside it.
func NewYtDlpFetcher(cfg config.ToolsConfig, exec executor.Executor) *YtDlpFetcher {
	return &YtDlpFetcher{
		binaryPath: cfg.YtDlpPath,
		workDir:    cfg.WorkDir,
		exec:       exec,
	}
}

// Fetch downloads the best audio stream of ref to a temporary mp3 file.
// The caller owns the returned artifact and must Release it.
func (f *YtDlpFetcher) Fetch(ctx context.Context, ref domain.VideoReference) (*domain.AudioArtifact, error) {
	audioPath := filepath.Join(f.workDir, uuid.NewString()+".mp3")

	// -x converts the bestaudio stream to mp3; --no-playlist keeps a playlist
	// URL from fanning out into multiple downloads.
	args := []string{
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-warnings",
		"-q",
		"-o", audioPath,
		ref.URL,
	}

	logger.Get().Info("Downloading audio",
		zap.String("video_id", ref.VideoID),
		zap.String("output", audioPath))

	if _, err := f.exec.Execute(ctx, f.binaryPath, args...); err != nil {
		// The partial file, if any, must not outlive the failed call.
		_ = os.Remove(audioPath)
		return nil, classifyFetchError(err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return nil, domain.NewFetchNetworkFailureError(
			fmt.Errorf("yt-dlp reported success but produced no file: %w", err))
	}

	return &domain.AudioArtifact{Path: audioPath, Source: ref}, nil
}

// classifyFetchError maps yt-dlp failures onto the FetchError taxonomy by
// inspecting the captured stderr.
func classifyFetchError(err error) *domain.DomainError {
	var exitErr *executor.ExitError
	if !errors.As(err, &exitErr) {
		return domain.NewFetchNetworkFailureError(err)
	}

	stderr := strings.ToLower(exitErr.Stderr)
	switch {
	case strings.Contains(stderr, "video unavailable"),
		strings.Contains(stderr, "private video"),
		strings.Contains(stderr, "has been removed"),
		strings.Contains(stderr, "this video is not available"):
		return domain.NewFetchUnavailableError(err)
	case strings.Contains(stderr, "no audio"),
		strings.Contains(stderr, "requested format is not available"):
		return domain.NewFetchNoAudioStreamError(err)
	case strings.Contains(stderr, "429"),
		strings.Contains(stderr, "too many requests"),
		strings.Contains(stderr, "rate-limit"):
		return domain.NewFetchRateLimitedError(err)
	default:
		return domain.NewFetchNetworkFailureError(err)
	}
}

var _ domain.MediaFetcher = (*YtDlpFetcher)(nil)
