package ytdlp

import (
	"context"
	"errors"
	"os"
	"testing"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/executor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor func(ctx context.Context, name string, args ...string) (string, error)

func (f fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}

var testRef = domain.VideoReference{
	URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	VideoID: "dQw4w9WgXcQ",
}

// outputPath extracts the value of the -o flag from a yt-dlp invocation.
func outputPath(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("yt-dlp invoked without -o flag")
	return ""
}

func newFetcher(t *testing.T, exec executor.Executor) *YtDlpFetcher {
	t.Helper()
	return NewYtDlpFetcher(config.ToolsConfig{
		YtDlpPath: "yt-dlp",
		WorkDir:   t.TempDir(),
	}, exec)
}

func TestFetch_ReturnsArtifactForDownloadedFile(t *testing.T) {
	var gotURL string
	fetcher := newFetcher(t, fakeExecutor(func(ctx context.Context, name string, args ...string) (string, error) {
		gotURL = args[len(args)-1]
		require.NoError(t, os.WriteFile(outputPath(t, args), []byte("audio"), 0o600))
		return "", nil
	}))

	artifact, err := fetcher.Fetch(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, testRef, artifact.Source)
	assert.Equal(t, testRef.URL, gotURL)

	_, statErr := os.Stat(artifact.Path)
	assert.NoError(t, statErr)

	require.NoError(t, artifact.Release())
	_, statErr = os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetch_ClassifiesStderr(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		code   domain.ErrorCode
	}{
		{"unavailable", "ERROR: Video unavailable", domain.CodeFetchUnavailable},
		{"private", "ERROR: Private video. Sign in if you've been granted access", domain.CodeFetchUnavailable},
		{"removed", "ERROR: This video has been removed by the uploader", domain.CodeFetchUnavailable},
		{"no audio", "ERROR: no audio streams found", domain.CodeFetchNoAudioStream},
		{"format unavailable", "ERROR: Requested format is not available", domain.CodeFetchNoAudioStream},
		{"http 429", "ERROR: HTTP Error 429: Too Many Requests", domain.CodeFetchRateLimited},
		{"unknown stderr", "ERROR: something else entirely", domain.CodeFetchNetworkFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := newFetcher(t, fakeExecutor(func(ctx context.Context, name string, args ...string) (string, error) {
				return "", &executor.ExitError{
					Name:   name,
					Stderr: tc.stderr,
					Err:    errors.New("exit status 1"),
				}
			}))

			_, err := fetcher.Fetch(context.Background(), testRef)
			require.Error(t, err)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

func TestFetch_NonExitErrorsAreNetworkFailures(t *testing.T) {
	fetcher := newFetcher(t, fakeExecutor(func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}))

	_, err := fetcher.Fetch(context.Background(), testRef)
	require.Error(t, err)
	assert.Equal(t, domain.CodeFetchNetworkFailure, domain.CodeOf(err))
}

func TestFetch_RemovesPartialFileOnFailure(t *testing.T) {
	var partialPath string
	fetcher := newFetcher(t, fakeExecutor(func(ctx context.Context, name string, args ...string) (string, error) {
		partialPath = outputPath(t, args)
		require.NoError(t, os.WriteFile(partialPath, []byte("truncated"), 0o600))
		return "", &executor.ExitError{Name: name, Stderr: "connection reset", Err: errors.New("exit status 1")}
	}))

	_, err := fetcher.Fetch(context.Background(), testRef)
	require.Error(t, err)

	_, statErr := os.Stat(partialPath)
	assert.True(t, os.IsNotExist(statErr), "partial download must not outlive the failed fetch")
}

func TestFetch_SuccessWithoutFileIsNetworkFailure(t *testing.T) {
	fetcher := newFetcher(t, fakeExecutor(func(ctx context.Context, name string, args ...string) (string, error) {
		return "", nil
	}))

	_, err := fetcher.Fetch(context.Background(), testRef)
	require.Error(t, err)
	assert.Equal(t, domain.CodeFetchNetworkFailure, domain.CodeOf(err))
}
