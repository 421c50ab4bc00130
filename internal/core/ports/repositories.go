package ports

import "context"

// DatasetProvider supplies the raw municipality table. Implementations
// decide where the bytes come from (local cache, remote source, memory).
type DatasetProvider interface {
	Fetch(ctx context.Context) ([]byte, error)
}
