package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/contentplane/aikit/internal/utils"
)

// splitAudio writes the audio to a temp directory, segments it with ffmpeg
// into duration-second pieces, and reads the pieces back into memory. The
// directory and everything in it is removed before returning.
func (p *Provider) splitAudio(ctx context.Context, audio []byte, duration int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "whisper_chunks_")
	if err != nil {
		return nil, fmt.Errorf("creating chunk directory: %w", err)
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "source.mp3")
	if err := os.WriteFile(source, audio, 0o600); err != nil {
		return nil, fmt.Errorf("writing audio source: %w", err)
	}

	pattern := filepath.Join(dir, "chunk_%03d.mp3")
	cmd := exec.CommandContext(ctx, p.ffmpeg,
		"-i", source,
		"-f", "segment",
		"-segment_time", strconv.Itoa(duration),
		"-c", "copy",
		pattern)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg segmentation: %w: %s", err, utils.TruncateString(string(out), utils.DefaultMaxStringLength))
	}

	names, err := filepath.Glob(filepath.Join(dir, "chunk_*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}
	sort.Strings(names)

	chunks := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading segment %s: %w", filepath.Base(name), err)
		}
		chunks = append(chunks, data)
	}
	return chunks, nil
}

// parseText extracts the text field from a transcription response.
func parseText(body []byte) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON returned by Whisper: %w", err)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("Whisper response contains no text")
	}
	return resp.Text, nil
}
