// Package faces exposes the internal face-detection endpoint: it receives
// an estimateFaces RPC over HTTP, runs a pluggable detector against the
// named image, and persists the bounding boxes as a "predictions" attribute
// on the target content object.
package faces
