package topology

import "context"

// ListableCatalog is an optional extension of Catalog for implementations
// that can enumerate every registered vertex-label. The SQL builder falls
// back to it only when a source step carries no label constraint of its
// own — resolving an unconstrained V() otherwise has no candidate table to
// start from.
type ListableCatalog interface {
	Catalog

	// VertexLabels returns every vertex-label currently registered.
	VertexLabels(ctx context.Context) ([]string, error)
}
