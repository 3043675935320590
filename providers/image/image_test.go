package image

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProvider records calls and returns canned outcomes. Shared by the
// registry and async tests.
type fakeProvider struct {
	generateCalls int
	removeCalls   int
	prompt        string
	img           []byte
	opts          Options
	result        *Result
	err           error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	f.generateCalls++
	f.prompt = prompt
	f.opts = opts
	return f.result, f.err
}

func (f *fakeProvider) RemoveBackground(ctx context.Context, img []byte, opts Options) (*Result, error) {
	f.removeCalls++
	f.img = img
	f.opts = opts
	return f.result, f.err
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		width  int
		height int
	}{
		{"defaults", Options{}, 1024, 1024},
		{"size string wins", Options{Size: "512x768", Width: 100, Height: 100}, 512, 768},
		{"explicit dimensions", Options{Width: 640, Height: 480}, 640, 480},
		{"partial dimensions fall back", Options{Width: 640}, 640, 1024},
		{"malformed size ignored", Options{Size: "huge", Width: 200, Height: 300}, 200, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.opts.Dimensions()
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestResolution(t *testing.T) {
	assert.Equal(t, "1024x1024", Options{}.Resolution())
	assert.Equal(t, "512x768", Options{Size: "512x768"}.Resolution())
}

func TestTimeoutOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, Options{}.TimeoutOrDefault(time.Minute))
	assert.Equal(t, time.Second, Options{Timeout: time.Second}.TimeoutOrDefault(time.Minute))
}

func TestProviderError(t *testing.T) {
	withStatus := &ProviderError{Provider: "vendor", Status: 402, Message: "quota exceeded"}
	assert.Equal(t, "vendor: status 402: quota exceeded", withStatus.Error())

	withoutStatus := &ProviderError{Provider: "vendor", Message: "bad input"}
	assert.Equal(t, "vendor: bad input", withoutStatus.Error())
}

func TestRegistryCreateAndAliases(t *testing.T) {
	Register("Test-Image Provider", func() Provider { return &fakeProvider{} })

	assert.NotNil(t, Create("testimageprovider"))
	assert.NotNil(t, Create("TEST_image-provider"))
	assert.Nil(t, Create("unregistered"))
	assert.Contains(t, Registered(), "testimageprovider")
}

func TestResolve(t *testing.T) {
	direct := &fakeProvider{}
	assert.Same(t, direct, Resolve(direct).(*fakeProvider))

	Register("resolvable-image", func() Provider { return &fakeProvider{} })
	assert.NotNil(t, Resolve("resolvable-image"))

	assert.Nil(t, Resolve(3.14))
}

func TestGenerateAsync(t *testing.T) {
	fake := &fakeProvider{result: &Result{Data: []byte{1}, Format: "png"}}

	h := GenerateAsync(context.Background(), fake, "a red square", Options{}, nil)

	res, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 1, fake.generateCalls)
	assert.Equal(t, "a red square", fake.prompt)
}

func TestRemoveBackgroundAsyncCallbackPanicRecovered(t *testing.T) {
	fake := &fakeProvider{result: &Result{Data: []byte{2}, Format: "png"}}

	var callbackRuns int
	h := RemoveBackgroundAsync(context.Background(), fake, []byte{9}, Options{}, func(Outcome) {
		callbackRuns++
		panic("callback bug")
	})

	res, err := h.Wait(context.Background())
	require.NoError(t, err, "a panicking callback must not poison the outcome")
	assert.NotNil(t, res)
	assert.Equal(t, 1, callbackRuns)
	assert.Equal(t, []byte{9}, fake.img)
}
