// Package web fetches live web pages for extraction.
//
// HTTPFetcher issues rate-limited GET requests with a browser user agent.
// BrowserFetcher renders the page in headless Chrome for sites that build
// their content with JavaScript.
package web
