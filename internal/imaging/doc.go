// Package imaging provides the pixel-level building blocks of the signature
// redactor: image loading and saving, binarization, morphology, connected
// components, redaction and debug drawing.
//
// All operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y increases
// downward.
//
// # Coordinate System
//
// Regions are image.Rectangle values: Min is inclusive (top-left), Max is
// exclusive (bottom-right). Mask coordinates are always 0-based regardless of
// the bounds of the image the mask was derived from.
//
// # Binary Masks
//
// A Mask is a foreground/background grid. Foreground pixels are "ink": dark
// strokes after inverted adaptive thresholding. Masks are derived per stage
// and never shared between calls.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless. Redact and the Draw* functions mutate the destination image in
// place; callers that share an image must synchronize or clone first.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading or saving
//   - Undecodable image data
//   - Unknown redaction modes or malformed color strings
//
// Zero-area regions are never an error; operations on them are no-ops.
package imaging
