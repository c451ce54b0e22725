package service

import (
	"context"
	"time"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/logger"
	"vidquiz/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// QuizPipeline sequences fetch, transcription, generation and assembly into
// one strictly linear, single-pass invocation. Each invocation owns its
// intermediate artifacts; nothing is shared or cached across invocations.
type QuizPipeline struct {
	fetcher     domain.MediaFetcher
	transcriber domain.Transcriber
	generator   domain.QuestionGenerator
	cfg         config.PipelineConfig
	sem         *semaphore.Weighted
}

// NewQuizPipeline creates a new pipeline. All ceilings, timeouts and retry
// counts come from cfg so tests can substitute deterministic collaborators
// and a zero backoff.
func NewQuizPipeline(
	fetcher domain.MediaFetcher,
	transcriber domain.Transcriber,
	generator domain.QuestionGenerator,
	cfg config.PipelineConfig,
) *QuizPipeline {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &QuizPipeline{
		fetcher:     fetcher,
		transcriber: transcriber,
		generator:   generator,
		cfg:         cfg,
		sem:         semaphore.NewWeighted(maxConcurrent),
	}
}

// Run turns a raw video URL into a validated Quiz. A malformed URL fails with
// an INVALID_URL error before any external call; every later failure is a
// PipelineError naming the stage that failed and preserving the underlying
// error kind.
func (p *QuizPipeline) Run(ctx context.Context, rawURL string) (*domain.Quiz, error) {
	ref, err := validation.ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, domain.NewInternalError("pipeline invocation cancelled", err)
	}
	defer p.sem.Release(1)

	l := logger.Get().With(zap.String("video_id", ref.VideoID))
	started := time.Now()

	artifact, err := p.fetch(ctx, ref)
	if err != nil {
		return nil, domain.NewPipelineError(domain.StageFetching, err)
	}
	defer func() {
		if releaseErr := artifact.Release(); releaseErr != nil {
			l.Warn("Failed to release audio artifact", zap.Error(releaseErr))
		}
	}()

	transcript, err := p.transcribe(ctx, artifact)
	if err != nil {
		return nil, domain.NewPipelineError(domain.StageTranscribing, err)
	}

	rawOutput, err := p.generate(ctx, transcript)
	if err != nil {
		return nil, domain.NewPipelineError(domain.StageGenerating, err)
	}

	quiz, err := AssembleQuiz(rawOutput, ref)
	if err != nil {
		// Re-running assembly on the same raw output yields the same
		// failure, so assembly errors are never retried here.
		return nil, domain.NewPipelineError(domain.StageAssembling, err)
	}

	l.Info("Pipeline completed",
		zap.Int("questions", len(quiz.Questions)),
		zap.Duration("duration", time.Since(started)))

	return quiz, nil
}

// fetch downloads the audio, retrying transient network failures a bounded
// number of times. All other fetch error kinds are terminal.
func (p *QuizPipeline) fetch(ctx context.Context, ref domain.VideoReference) (*domain.AudioArtifact, error) {
	var lastErr error
	attempts := p.cfg.FetchRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := p.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		stageCtx, cancel := p.stageContext(ctx, p.cfg.FetchTimeout)
		artifact, err := p.fetcher.Fetch(stageCtx, ref)
		cancel()
		if err == nil {
			return artifact, nil
		}
		lastErr = err

		if domain.CodeOf(err) != domain.CodeFetchNetworkFailure {
			return nil, err
		}
		logger.Get().Warn("Audio fetch failed, retrying",
			zap.String("video_id", ref.VideoID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

// transcribe runs speech-to-text, retrying once on service failure or timeout.
func (p *QuizPipeline) transcribe(ctx context.Context, artifact *domain.AudioArtifact) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := p.backoff(ctx, attempt); err != nil {
				return "", err
			}
		}

		stageCtx, cancel := p.stageContext(ctx, p.cfg.TranscribeTimeout)
		transcript, err := p.transcriber.Transcribe(stageCtx, artifact)
		cancel()
		if err == nil {
			return transcript, nil
		}
		lastErr = err

		code := domain.CodeOf(err)
		if code != domain.CodeTranscriptionServiceFailure && code != domain.CodeTranscriptionTimeout {
			return "", err
		}
		logger.Get().Warn("Transcription failed, retrying once", zap.Error(err))
	}
	return "", lastErr
}

// generate asks the model for questions, retrying rate-limited calls with
// backoff. Other generation error kinds are terminal.
func (p *QuizPipeline) generate(ctx context.Context, transcript string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := p.backoff(ctx, attempt); err != nil {
				return "", err
			}
		}

		stageCtx, cancel := p.stageContext(ctx, p.cfg.GenerateTimeout)
		rawOutput, err := p.generator.Generate(stageCtx, transcript, p.cfg.QuestionCount)
		cancel()
		if err == nil {
			return rawOutput, nil
		}
		lastErr = err

		if domain.CodeOf(err) != domain.CodeGenerationRateLimited {
			return "", err
		}
		logger.Get().Warn("Generation rate limited, retrying", zap.Error(err))
	}
	return "", lastErr
}

func (p *QuizPipeline) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// backoff sleeps between retry attempts, aborting early on cancellation.
func (p *QuizPipeline) backoff(ctx context.Context, attempt int) error {
	if p.cfg.RetryBackoff <= 0 {
		return nil
	}
	timer := time.NewTimer(p.cfg.RetryBackoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.NewInternalError("pipeline invocation cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}
