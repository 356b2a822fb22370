// Package ocr reads the letters left in a cleaned image using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Images are
// handed to Tesseract as in-memory PNG bytes, so cleaned grids can be read
// without touching the filesystem.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Page Segmentation
//
// The cleaned images hold a short run of letters (three or four in general)
// on one line, so the default page segmentation mode is a single text line.
// Use Options.PageSegMode to override it, and Options.Whitelist to restrict
// the recognized characters.
//
// # Error Handling
//
// Functions return errors for:
//   - Images that cannot be encoded
//   - Unsupported language codes or page segmentation modes
//   - Tesseract initialization failures
//
// If bounding box extraction fails (e.g., Tesseract version mismatch),
// Recognize still returns the extracted text with an empty Words slice.
package ocr
