package image

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MaxReferenceImages caps the number of reference images any adapter will
// attach to a request. Extra images are silently dropped.
const MaxReferenceImages = 5

// DefaultDimension is the width and height used when the caller specifies
// neither a size string nor explicit dimensions.
const DefaultDimension = 1024

// ErrUnsupported is returned by adapters for operations their vendor does
// not offer (e.g. generation on a background-removal-only service).
var ErrUnsupported = errors.New("operation not supported by this provider")

// ProviderError carries a vendor error envelope normalized into a message.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Result is a normalized image payload: the binary data and the format it is
// actually encoded in ("png" or "jpg").
type Result struct {
	Data   []byte
	Format string
}

// Options carries the normalized knobs shared across adapters. Fields a
// vendor does not support are ignored; vendor-specific flags with no
// normalized equivalent travel in Extra as string key/value pairs.
type Options struct {
	Model      string
	Format     string // requested output format: "png" (default) or "jpg"
	Size       string // "WIDTHxHEIGHT"; takes precedence over Width/Height
	Width      int
	Height     int
	Background string // "none", "transparent", "gradient"
	Feather    int
	Quality    string // generation quality hint ("standard", "hd", ...)
	Prompt     string // prompt override for RemoveBackground delegation

	// Images holds reference images as raw bytes, base64, or data URIs.
	// Adapters normalize each once and cap the list at MaxReferenceImages.
	Images [][]byte

	Timeout time.Duration
	Extra   map[string]string
}

var sizeRe = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Dimensions resolves the requested output dimensions: an explicit Size
// string wins, then Width/Height, then the default square.
func (o Options) Dimensions() (width, height int) {
	if m := sizeRe.FindStringSubmatch(o.Size); m != nil {
		width, _ = strconv.Atoi(m[1])
		height, _ = strconv.Atoi(m[2])
		return width, height
	}
	width, height = o.Width, o.Height
	if width <= 0 {
		width = DefaultDimension
	}
	if height <= 0 {
		height = DefaultDimension
	}
	return width, height
}

// Resolution renders the resolved dimensions as "WIDTHxHEIGHT".
func (o Options) Resolution() string {
	w, h := o.Dimensions()
	return fmt.Sprintf("%dx%d", w, h)
}

// TimeoutOrDefault returns the configured timeout, or def when unset.
func (o Options) TimeoutOrDefault(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}

// Provider is the image capability. Generate produces an image from a
// prompt; RemoveBackground strips the background from an existing image.
// Both accept the input image as raw bytes, base64, or a data URI and
// return normalized binary output.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Result, error)
	RemoveBackground(ctx context.Context, img []byte, opts Options) (*Result, error)
}
