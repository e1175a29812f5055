// Package pdf extracts text from PDF files.
//
// Extraction runs an ordered list of strategies and accepts the first one
// that returns non-blank text:
//
//   - tabula: pure-Go extraction
//   - tabula-layout: tabula with header/footer removal, paragraph joining
//     and column-aware reading order
//   - pdftotext: poppler's pdftotext -layout, run as an external command
//
// The pdftotext strategy needs poppler installed; see InstallInstructions.
package pdf
