// Package pagination provides full-collection traversal of the paginated
// people resource.
//
// Page tokens are opaque URLs handed out by the upstream itself, so pages
// cannot be fanned out by number; the walker follows the next-token chain
// sequentially instead. A MaxPages guard protects against link cycles in
// a misbehaving upstream.
//
//	walker := pagination.NewWalker(apiClient, pagination.DefaultConfig())
//	people, err := walker.FetchAll(ctx, "")
package pagination
