// Package fetch provides semka.Fetcher implementations: FS reads documents
// out of an fs.FS and HTTP fetches them from a web server. Both report
// failures as *semka.FetchError, categorized the same way.
package fetch
