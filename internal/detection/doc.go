// Package detection locates a handwritten signature on a scanned page.
//
// Detection is a fixed, linear sequence of heuristic stages:
//
//  1. Binarize: inverted adaptive threshold, ink becomes foreground
//  2. Propose: wide rectangular dilation merges the strokes of one signature,
//     then external connected components give coarse boxes
//  3. Score: geometric features of each box are turned into a score and a
//     RegionClassifier penalizes boxes that look like printed dates
//  4. Select: the highest positive score wins
//  5. Refine: the winning box is re-thresholded more finely and shrunk to
//     the ink it contains, plus padding
//
// Redaction of the refined box is left to the caller (see package imaging).
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Images whose bounds do not start at the origin are copied to a 0-origin
// image first, so reported boxes are relative to the image's top-left corner.
//
// # Scores
//
// Scores are unbounded sums of rewards and penalties, not probabilities.
// A box with the default weights earns up to 100 points:
//   - Aspect ratio: up to 30 for wide boxes
//   - Width: up to 25
//   - Ink density: up to 20 for the sparse band typical of cursive strokes
//   - Height: up to 15
//   - Area: 10 above 3000 square pixels
//
// Only candidates scoring above zero are kept. Ties are ordered by the
// configured TieBreak policy.
//
// # Limitations
//
// The heuristics assume a light page with dark ink and a signature that is
// wider than it is tall. Stamps, dense handwriting paragraphs and rotated
// signatures may be missed or misranked.
package detection
