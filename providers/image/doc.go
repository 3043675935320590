// Package image defines the image capability: text-to-image generation and
// background removal behind a provider-neutral interface.
//
// Adapter packages under providers/image register themselves on import.
// Two request shapes exist across vendors: JSON bodies carrying base64
// payloads, and multipart uploads with binary file parts. Both normalize to
// the same Result.
//
// Upload format policy, applied uniformly: images with an alpha channel are
// submitted as PNG, opaque images as JPEG at quality 85. WebP is never sent
// to any vendor.
package image
