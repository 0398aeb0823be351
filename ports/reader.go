package ports

import (
	"context"

	"abalone/domain/dataset"
)

// DatasetReader loads a measurement table into an immutable dataset.
type DatasetReader interface {
	ReadDataset(ctx context.Context, path string) (*dataset.Dataset, error)
}
