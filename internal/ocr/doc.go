// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Its main
// use is telling printed text, such as a date field, apart from handwriting:
// the detector asks a Reader what a candidate region says and penalizes the
// region if the answer looks like a date.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Chinese dates: tesseract-ocr-chi-sim, then use "eng+chi_sim"
//
// # Performance Considerations
//
// OCR is computationally expensive. Readers are only consulted for the
// handful of regions that survive the geometric filters, and each region is
// cropped before recognition.
//
// # Error Handling
//
// Functions return errors when the language data is missing, the image is
// empty, or Tesseract fails. Callers that use OCR as a secondary signal
// should treat an error as "no information" rather than as a failure.
package ocr
