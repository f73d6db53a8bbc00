// Package http exposes the block registry and render pipeline over HTTP.
//
// Routes:
//   - GET /healthz
//   - GET /blocks (definitions with labels localized by ?locale=)
//   - GET /blocks/:id (rendered markup, id or slug, ?locale=)
//   - GET /themes (registered themes)
//
// Rendered markup carries Cache-Control derived from the block max-age plus
// the X-Drupier-Cache and X-Drupier-Cache-Tags headers.
package http
