// Package api exposes the layout engine over HTTP.
//
// The router serves scenes from a [store.Store] through a
// [pipeline.Runner]. Each scene gets one long-lived engine, so layout
// requests for the same map are serialized and superseded exactly as they
// are in process.
//
// # Routes
//
//	GET  /healthz
//	GET  /scenes
//	GET  /scenes/{name}
//	PUT  /scenes/{name}
//	GET  /scenes/{name}/render.{format}
//	POST /scenes/{name}/layout
//	GET  /scenes/{name}/nodes/{id}/hierarchy
//	POST /scenes/{name}/nodes/{id}/children
//	POST /scenes/{name}/nodes/{id}/siblings
//	POST /scenes/{name}/nodes/{id}/{action}
//
// Actions are fold, fold-children, fold-all, boundary, group, pin, up,
// down, promote, demote, swap and delete.
//
// # Errors
//
// Errors are JSON objects {"code": ..., "error": ...}. Rejected edits map to
// 409 Conflict, unknown scenes and nodes to 404 and invalid input to 400.
package api
