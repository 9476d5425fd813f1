package abstract

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"golang.org/x/sync/errgroup"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver DriverInterface
}

func NewAbstractDriver(_ context.Context, driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{
		driver: driver,
	}
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	if err := a.driver.GetConfigRef().Validate(); err != nil {
		return &types.ConfigurationError{Err: err}
	}
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) Check(ctx context.Context) error {
	return a.driver.Check(ctx)
}

// Discover produces every stream schema concurrently and returns them in the
// order the driver registered them
func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	names, err := a.driver.GetStreamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream names: %s", err)
	}

	order := make(map[string]int, len(names))
	for idx, name := range names {
		order[name] = idx
	}

	var streamMap sync.Map
	limit := a.driver.MaxConnections()
	if limit <= 0 {
		limit = constants.DefaultThreadCount
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for _, name := range names {
		group.Go(func() error {
			stream, err := a.driver.ProduceSchema(groupCtx, name)
			if err != nil {
				return fmt.Errorf("failed to produce schema for stream %s: %s", name, err)
			}
			if stream.Parent != "" {
				if _, found := order[stream.Parent]; !found {
					return fmt.Errorf("stream %s has unknown parent %s", name, stream.Parent)
				}
			}
			streamMap.Store(stream.Name, stream)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	streams := []*types.Stream{}
	streamMap.Range(func(_, value any) bool {
		streams = append(streams, value.(*types.Stream))
		return true
	})
	sort.SliceStable(streams, func(i, j int) bool {
		return order[streams[i].Name] < order[streams[j].Name]
	})

	logger.Debugf("discovered %d streams", len(streams))
	return streams, nil
}
