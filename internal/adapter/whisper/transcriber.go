package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/executor"
	"vidquiz/internal/logger"

	"go.uber.org/zap"
)

// WhisperTranscriber implements domain.Transcriber using a local whisper.cpp
// binary, with ffprobe as a duration probe so overlong audio fails fast
// instead of timing out mid-transcription.
type WhisperTranscriber struct {
	binaryPath      string
	modelPath       string
	ffprobePath     string
	language        string
	maxAudioSeconds float64
	exec            executor.Executor
}

// NewWhisperTranscriber creates a new transcriber.
func NewWhisperTranscriber(cfg config.ToolsConfig, maxAudioSeconds float64, exec executor.Executor) *WhisperTranscriber {
	return &WhisperTranscriber{
		binaryPath:      cfg.WhisperPath,
		modelPath:       cfg.WhisperModel,
		ffprobePath:     cfg.FFprobePath,
		language:        cfg.WhisperLanguage,
		maxAudioSeconds: maxAudioSeconds,
		exec:            exec,
	}
}

// Transcribe converts the audio artifact to plain text. An empty or
// whitespace-only result is an EmptyAudio error, never an empty transcript.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, artifact *domain.AudioArtifact) (string, error) {
	duration, err := t.probeDuration(ctx, artifact.Path)
	if err != nil {
		return "", err
	}
	if t.maxAudioSeconds > 0 && duration > t.maxAudioSeconds {
		return "", domain.NewTranscriptionTooLongError(duration, t.maxAudioSeconds)
	}

	outputPrefix := strings.TrimSuffix(artifact.Path, ".mp3")

	// -otxt writes <prefix>.txt; -np suppresses progress chatter on stderr.
	args := []string{
		"-m", t.modelPath,
		"-f", artifact.Path,
		"-l", t.language,
		"-otxt",
		"-np",
		"--output-file", outputPrefix,
	}

	logger.Get().Info("Transcribing audio",
		zap.String("audio", artifact.Path),
		zap.Float64("duration_seconds", duration))

	if _, err := t.exec.Execute(ctx, t.binaryPath, args...); err != nil {
		return "", classifyTranscribeError(ctx, err)
	}

	textPath := outputPrefix + ".txt"
	defer os.Remove(textPath)

	raw, err := os.ReadFile(textPath)
	if err != nil {
		return "", domain.NewTranscriptionServiceFailureError(
			fmt.Errorf("whisper produced no transcript file: %w", err))
	}

	transcript := strings.TrimSpace(string(raw))
	if transcript == "" {
		return "", domain.NewTranscriptionEmptyAudioError()
	}

	return transcript, nil
}

// probeDuration asks ffprobe for the container duration in seconds.
func (t *WhisperTranscriber) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	out, err := t.exec.Execute(ctx, t.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	if err != nil {
		return 0, classifyTranscribeError(ctx, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, domain.NewTranscriptionServiceFailureError(
			fmt.Errorf("unparseable ffprobe duration %q: %w", strings.TrimSpace(out), err))
	}
	return duration, nil
}

func classifyTranscribeError(ctx context.Context, err error) *domain.DomainError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTranscriptionTimeoutError(err)
	}
	return domain.NewTranscriptionServiceFailureError(err)
}

var _ domain.Transcriber = (*WhisperTranscriber)(nil)
