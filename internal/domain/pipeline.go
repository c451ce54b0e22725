package domain

import (
	"context"
	"os"
)

// VideoReference is a validated, normalized reference to a source video.
// It only ever exists after URL validation has succeeded.
type VideoReference struct {
	// URL is the normalized watch URL.
	URL string
	// VideoID is the host-specific video identifier extracted from the raw URL.
	VideoID string
}

// AudioArtifact is a handle to a locally materialized audio file belonging to
// one pipeline invocation. Release must be called exactly once, regardless of
// whether the invocation succeeded.
type AudioArtifact struct {
	Path   string
	Source VideoReference
}

// Release removes the underlying temporary file. Releasing an already-removed
// artifact is not an error.
func (a *AudioArtifact) Release() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MediaFetcher downloads the audio track of a video to a local temporary file.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref VideoReference) (*AudioArtifact, error)
}

// Transcriber turns a local audio file into a plain-text transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, artifact *AudioArtifact) (string, error)
}

// QuestionGenerator asks a generative model for quiz questions based on a
// transcript. The returned payload is raw, untrusted model output; it is only
// ever consumed by the assembler.
type QuestionGenerator interface {
	Generate(ctx context.Context, transcript string, numQuestions int) (string, error)
}
