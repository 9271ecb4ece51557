// Package http provides the HTTP client used for every outbound request.
//
// The Client in this package handles:
//   - User-Agent headers expected by the site
//   - Streaming file downloads with progress tracking
//   - Typed errors for non-success responses
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient("MangaWeb", time.Minute)
//
//	// Fetch HTML page
//	html, err := client.GetString(ctx, contentRootURL)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, jpgURL, "/staging/work/0/1.jpg", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// Non-200 responses are returned as *StatusError:
//
//	var statusErr *http.StatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
//	    // ...
//	}
package http
