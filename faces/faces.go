package faces

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/contentplane/aikit/content"
)

// MethodEstimateFaces is the internal RPC method the handler accepts.
const MethodEstimateFaces = "AI/Image/estimateFaces"

// Prediction is one detected face as a pixel-space bounding box.
type Prediction struct {
	TopLeft     [2]int `json:"topLeft"`
	BottomRight [2]int `json:"bottomRight"`
}

// Detector runs face detection on an image file. Implementations wrap
// whatever model the deployment ships with.
type Detector interface {
	EstimateFaces(ctx context.Context, imagePath string) ([]Prediction, error)
}

// request is the internal RPC envelope.
type request struct {
	Method      string `json:"Q/method"`
	ImagePath   string `json:"imagePath"`
	PublisherID string `json:"publisherId"`
	StreamName  string `json:"streamName"`
}

// Handler is the internal HTTP endpoint that runs face detection and writes
// the predictions back onto the named content object.
type Handler struct {
	detector Detector
	store    content.Store
}

// NewHandler builds the endpoint around a detector and a content store.
func NewHandler(detector Detector, store content.Store) *Handler {
	return &Handler{detector: detector, store: store}
}

// ServeHTTP accepts a POST with a JSON body naming the method, image path,
// and target content object. Detection results are stored under the
// object's "predictions" attribute and echoed in the response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Method != MethodEstimateFaces {
		http.Error(w, "unknown method", http.StatusNotFound)
		return
	}
	if req.ImagePath == "" || req.PublisherID == "" || req.StreamName == "" {
		http.Error(w, "imagePath, publisherId and streamName are required", http.StatusBadRequest)
		return
	}

	predictions, err := h.detector.EstimateFaces(r.Context(), req.ImagePath)
	if err != nil {
		slog.Error("face detection failed", "imagePath", req.ImagePath, "error", err)
		http.Error(w, "face detection failed", http.StatusInternalServerError)
		return
	}

	if err := h.savePredictions(r.Context(), req.PublisherID, req.StreamName, predictions); err != nil {
		slog.Warn("storing predictions failed",
			"publisherId", req.PublisherID, "streamName", req.StreamName, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"predictions": predictions}); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

func (h *Handler) savePredictions(ctx context.Context, publisherID, streamName string, predictions []Prediction) error {
	obj, err := h.store.FetchOne(ctx, publisherID, streamName)
	if err != nil {
		return err
	}
	obj.SetAttribute("predictions", predictions)
	return h.store.Save(ctx, obj)
}
