// Package normalisers holds the extractors that turn source material into
// domain.Document text: pdf for PDF files and html for live web pages and
// saved HTML files. Each extractor reports the method that produced the text
// and runs its output through a cleaning pipeline.
package normalisers
