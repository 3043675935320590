package parse

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"

	"github.com/contentplane/aikit/internal/utils"
)

// ErrNotObject is returned when content parses as JSON but is not an object.
var ErrNotObject = errors.New("content is not a JSON object")

// ParseAs parses model output into T. It strips hallucinated code fences,
// attempts strict JSON unmarshaling, and on failure repairs the content with
// jsonrepair and retries once. Models routinely emit near-JSON (single
// quotes, trailing commas, unquoted keys); the repair pass recovers those
// without loosening the final type check.
func ParseAs[T any](content string) (T, error) {
	var result T

	cleaned := utils.StripCodeFences(content)

	err := json.Unmarshal([]byte(cleaned), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	if err = json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, utils.TruncateString(repaired, 500))
	}
	return result, nil
}

// ParseObject parses model output that is required to be a JSON object.
// Anything else (arrays, scalars, prose) is an error: callers that asked for
// an object shape must fail loudly rather than guess.
func ParseObject(content string) (map[string]any, error) {
	var probe any
	probe, err := ParseAs[any](content)
	if err != nil {
		return nil, err
	}
	obj, ok := probe.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, probe)
	}
	return obj, nil
}
