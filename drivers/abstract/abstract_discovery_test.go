package abstract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datazip-inc/tap-monday/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests for stream discovery functionality

func TestDiscover_KeepsRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{
		getStreamNamesFunc: func(_ context.Context) ([]string, error) {
			return []string{"workspaces", "boards", "items", "users"}, nil
		},
		produceSchemaFunc: func(_ context.Context, stream string) (*types.Stream, error) {
			// later streams finish first
			if stream == "workspaces" {
				time.Sleep(20 * time.Millisecond)
			}
			s := types.NewStream(stream, types.NullableObject(nil))
			if stream == "items" {
				s.WithParent("boards")
			}
			return s, nil
		},
	}

	streams, err := NewAbstractDriver(ctx, mockDriver).Discover(ctx)
	require.NoError(t, err)

	names := []string{}
	for _, stream := range streams {
		names = append(names, stream.Name)
	}
	assert.Equal(t, []string{"workspaces", "boards", "items", "users"}, names)
}

func TestDiscover_EmptyStreams(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{
		getStreamNamesFunc: func(_ context.Context) ([]string, error) {
			return []string{}, nil
		},
	}

	streams, err := NewAbstractDriver(ctx, mockDriver).Discover(ctx)
	require.NoError(t, err)
	assert.Len(t, streams, 0)
}

func TestDiscover_GetStreamNamesError(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{
		getStreamNamesFunc: func(_ context.Context) ([]string, error) {
			return nil, errors.New("connection failed")
		},
	}

	streams, err := NewAbstractDriver(ctx, mockDriver).Discover(ctx)
	require.Error(t, err)
	assert.Nil(t, streams)
	assert.Contains(t, err.Error(), "failed to get stream names")
}

func TestDiscover_ProduceSchemaError(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{
		getStreamNamesFunc: func(_ context.Context) ([]string, error) {
			return []string{"boards", "users"}, nil
		},
		produceSchemaFunc: func(_ context.Context, stream string) (*types.Stream, error) {
			if stream == "users" {
				return nil, errors.New("schema unavailable")
			}
			return types.NewStream(stream, types.NullableObject(nil)), nil
		},
	}

	_, err := NewAbstractDriver(ctx, mockDriver).Discover(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to produce schema for stream users")
}

func TestDiscover_UnknownParent(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{streams: []*types.Stream{itemsStream()}}

	_, err := NewAbstractDriver(ctx, mockDriver).Discover(ctx)
	assert.ErrorContains(t, err, "unknown parent boards")
}

func TestSetup_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	mockDriver := &MockDriver{config: &MockConfig{err: errors.New("api_token is a required field")}}

	err := NewAbstractDriver(ctx, mockDriver).Setup(ctx)
	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "api_token")
}
