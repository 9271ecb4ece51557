// Package site knows the structure of the content site: how a work name
// maps to a content root, how chapter and page links are discovered, and
// how page links are ordered.
//
// The package handles three concerns:
//
//  1. Resolving a work name to its content root (StaticResolver, or
//     RenderedResolver when the identifier only exists after the page
//     scripts ran)
//  2. Discovering child links of a page (Discoverer)
//  3. Ordering page links by their embedded number (SortPages)
//
// # Resolution
//
//	resolver := site.NewStaticResolver(client, siteConfig)
//	root, err := resolver.Resolve(ctx, work)
//	if errors.Is(err, site.ErrWorkNotFound) {
//	    log.Fatal("Could not find this manga")
//	}
//
// # Discovery
//
//	disco := site.NewDiscoverer(client)
//	chapterURLs, err := disco.Discover(ctx, root.URL)
//	pageURLs, err := disco.Discover(ctx, chapterURLs[0])
//	pages, err := site.SortPages(pageURLs)
//
// Chapter links keep the site's document order. Page links are always
// re-sorted numerically: the raw HTML order is not guaranteed to be.
package site
