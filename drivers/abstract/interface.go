package abstract

import (
	"context"

	"github.com/datazip-inc/tap-monday/types"
)

type Config interface {
	Validate() error
}

// Page is one upstream response of a stream partition
type Page struct {
	Rows []map[string]any
	// NextPageToken is empty once the partition is exhausted
	NextPageToken string
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// Setup builds the upstream client out of the loaded config
	Setup(ctx context.Context) error
	// Check validates credentials with a minimal upstream call
	Check(ctx context.Context) error
	// StartDate is the lower bound applied to incremental streams without bookmark
	StartDate() string
	// MaxConnections bounds concurrent schema production in discover
	MaxConnections() int
	// specific to discover
	GetStreamNames(ctx context.Context) ([]string, error)
	ProduceSchema(ctx context.Context, stream string) (*types.Stream, error)
	// specific to sync
	FetchPage(ctx context.Context, stream *types.Stream, partition types.Context, pageToken string) (*Page, error)
	Transform(stream *types.Stream, partition types.Context, row map[string]any) (types.Record, error)
	// ChildContext derives the partition of child streams from a parent record
	ChildContext(parent *types.Stream, record types.Record) types.Context
}
