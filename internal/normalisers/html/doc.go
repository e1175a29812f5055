// Package html extracts readable text from web pages and saved HTML files.
//
// Both extractors parse the page with goquery, drop navigation and script
// elements, pick the main content region and convert it to markdown before
// the cleaning pipeline runs. Live pages are retrieved through a
// driven.PageFetcher (plain HTTP first, headless browser as fallback).
package html
