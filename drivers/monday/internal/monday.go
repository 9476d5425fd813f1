package driver

import (
	"context"
	"fmt"

	"github.com/datazip-inc/tap-monday/drivers/abstract"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

type Monday struct {
	config *Config
	client *Client
}

// config reference; must be pointer
func (m *Monday) GetConfigRef() abstract.Config {
	if m.config == nil {
		m.config = &Config{}
	}
	return m.config
}

func (m *Monday) Spec() any {
	return specSchema()
}

func (m *Monday) Type() string {
	return "Monday"
}

func (m *Monday) Setup(_ context.Context) error {
	m.client = NewClient(m.config)
	return nil
}

// Check runs the cheapest authenticated query there is
func (m *Monday) Check(ctx context.Context) error {
	var out struct {
		Me *struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"me"`
	}
	if err := m.client.Execute(ctx, meQuery, nil, &out); err != nil {
		return err
	}
	if out.Me == nil {
		return &types.AuthenticationError{Message: "api token is not associated with a user"}
	}

	logger.Infof("authenticated with monday.com as %s <%s>", out.Me.Name, out.Me.Email)
	return nil
}

func (m *Monday) StartDate() string {
	return m.config.StartDate
}

func (m *Monday) MaxConnections() int {
	return m.config.MaxThreads
}

func (m *Monday) GetStreamNames(_ context.Context) ([]string, error) {
	return append([]string{}, streamOrder...), nil
}

func (m *Monday) ProduceSchema(_ context.Context, stream string) (*types.Stream, error) {
	definition, err := m.definition(stream)
	if err != nil {
		return nil, err
	}
	return definition.stream(), nil
}

func (m *Monday) FetchPage(ctx context.Context, stream *types.Stream, partition types.Context, pageToken string) (*abstract.Page, error) {
	definition, err := m.definition(stream.Name)
	if err != nil {
		return nil, err
	}
	return definition.fetch(ctx, m, partition, pageToken)
}

func (m *Monday) Transform(stream *types.Stream, partition types.Context, row map[string]any) (types.Record, error) {
	definition, err := m.definition(stream.Name)
	if err != nil {
		return nil, err
	}
	return definition.transform(partition, row)
}

// ChildContext partitions board scoped streams by board id
func (m *Monday) ChildContext(parent *types.Stream, record types.Record) types.Context {
	if parent.Name != boardsStream {
		return nil
	}
	id, err := record.GetStringifiedValue("id")
	if err != nil || id == "" {
		return nil
	}
	return types.Context{"board_id": id}
}

func (m *Monday) definition(stream string) (*streamDefinition, error) {
	definition, found := definitions[stream]
	if !found {
		return nil, fmt.Errorf("unknown stream %s", stream)
	}
	return definition, nil
}
