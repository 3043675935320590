// Package imaging normalizes image inputs at the capability boundary and
// implements the shared upload policy: decode raw/base64/data-URI input once,
// upload PNG only when an alpha channel is present, otherwise JPEG at a fixed
// quality of 85, and never WebP. It also converts provider PNG output to the
// caller's requested format, flattening transparency onto white for JPEG.
package imaging
