// Package server provides the read-only JSON API started by "mixtape serve".
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// [BasicRouter] registers "METHOD /path" patterns on an [http.ServeMux], so wrong methods get a 405 and path values
// like {id} are read with [http.Request.PathValue].
//
// # Handler Interface
//
// Custom handlers implement [Handler], which adds Routes to [http.Handler] so a handler owns its route table.
// [CatalogHandler] serves:
//
//	GET /health
//	GET /releases/{id}
//	GET /browse?category=&selection=
//	GET /categories
//	GET /values?category=
//	GET /tape
//	GET /tape/export?format=txt|csv|md
//
// Errors are JSON ({"error": "..."}) with the status chosen by [StatusFor]: 400 for invalid queries, 404 for
// missing rows, 409 before the first refresh and 500 otherwise.
package server
