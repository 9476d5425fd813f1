package abstract

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/datazip-inc/tap-monday/types"
)

type MockConfig struct {
	err error
}

func (c *MockConfig) Validate() error {
	return c.err
}

// MockDriver serves static pages keyed by stream and partition. Page tokens
// are page indexes.
type MockDriver struct {
	config    *MockConfig
	startDate string
	streams   []*types.Stream
	// stream -> partition key -> pages
	pages map[string]map[string][][]map[string]any

	mu      sync.Mutex
	fetches []string

	getStreamNamesFunc func(ctx context.Context) ([]string, error)
	produceSchemaFunc  func(ctx context.Context, stream string) (*types.Stream, error)
	fetchHook          func(stream string, partition types.Context, token string) error
	transformFunc      func(stream *types.Stream, partition types.Context, row map[string]any) (types.Record, error)
}

func (m *MockDriver) GetConfigRef() Config {
	if m.config == nil {
		m.config = &MockConfig{}
	}
	return m.config
}

func (m *MockDriver) Spec() any {
	return map[string]any{}
}

func (m *MockDriver) Type() string {
	return "mock"
}

func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) Check(_ context.Context) error {
	return nil
}

func (m *MockDriver) StartDate() string {
	return m.startDate
}

func (m *MockDriver) MaxConnections() int {
	return 2
}

func (m *MockDriver) GetStreamNames(ctx context.Context) ([]string, error) {
	if m.getStreamNamesFunc != nil {
		return m.getStreamNamesFunc(ctx)
	}
	names := []string{}
	for _, stream := range m.streams {
		names = append(names, stream.Name)
	}
	return names, nil
}

func (m *MockDriver) ProduceSchema(ctx context.Context, stream string) (*types.Stream, error) {
	if m.produceSchemaFunc != nil {
		return m.produceSchemaFunc(ctx, stream)
	}
	for _, one := range m.streams {
		if one.Name == stream {
			return one, nil
		}
	}
	return nil, fmt.Errorf("unknown stream %s", stream)
}

func (m *MockDriver) FetchPage(_ context.Context, stream *types.Stream, partition types.Context, pageToken string) (*Page, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, fmt.Sprintf("%s[%s]#%s", stream.Name, partition.Key(), pageToken))
	m.mu.Unlock()

	if m.fetchHook != nil {
		if err := m.fetchHook(stream.Name, partition, pageToken); err != nil {
			return nil, err
		}
	}

	pages := m.pages[stream.Name][partition.Key()]
	if len(pages) == 0 {
		return &Page{}, nil
	}

	index := 0
	if pageToken != "" {
		parsed, err := strconv.Atoi(pageToken)
		if err != nil || parsed >= len(pages) {
			return nil, types.ErrInvalidPageToken
		}
		index = parsed
	}

	page := &Page{Rows: pages[index]}
	if index+1 < len(pages) {
		page.NextPageToken = strconv.Itoa(index + 1)
	}
	return page, nil
}

func (m *MockDriver) Transform(stream *types.Stream, partition types.Context, row map[string]any) (types.Record, error) {
	if m.transformFunc != nil {
		return m.transformFunc(stream, partition, row)
	}
	record := types.Record{}
	for k, v := range row {
		record[k] = v
	}
	if id, found := partition["board_id"]; found {
		record["board_id"] = id
	}
	return record, nil
}

func (m *MockDriver) ChildContext(_ *types.Stream, record types.Record) types.Context {
	id, _ := record["id"].(string)
	if id == "" {
		return nil
	}
	return types.Context{"board_id": id}
}

func (m *MockDriver) fetchLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.fetches...)
}

// memoryWriter keeps every message in memory
type memoryWriter struct {
	mu       sync.Mutex
	messages []*types.Message
	// failAfterRecords simulates the host dying after n records
	failAfterRecords int
	records          int
}

var errHostKilled = fmt.Errorf("host terminated")

func (w *memoryWriter) Schema(stream *types.Stream, schema *types.Schema) error {
	return w.Message(types.NewSchemaMessage(stream, schema))
}

func (w *memoryWriter) Record(stream string, record types.Record, extractedAt time.Time) error {
	w.mu.Lock()
	if w.failAfterRecords > 0 && w.records >= w.failAfterRecords {
		w.mu.Unlock()
		return errHostKilled
	}
	w.records++
	w.mu.Unlock()
	return w.Message(types.NewRecordMessage(stream, record, extractedAt))
}

func (w *memoryWriter) State(state *types.State) error {
	return w.Message(types.NewStateMessage(state))
}

func (w *memoryWriter) Message(msg *types.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
	return nil
}

func (w *memoryWriter) Close() error {
	return nil
}

func (w *memoryWriter) recordsOf(stream string) []types.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	records := []types.Record{}
	for _, msg := range w.messages {
		if msg.Type == types.RecordMessage && msg.Stream == stream {
			records = append(records, msg.Record)
		}
	}
	return records
}

func (w *memoryWriter) lastState() *types.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.messages) - 1; i >= 0; i-- {
		if w.messages[i].Type == types.StateMessage {
			return w.messages[i].Value.Clone()
		}
	}
	return nil
}

func (w *memoryWriter) count(kind types.MessageType) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, msg := range w.messages {
		if msg.Type == kind {
			n++
		}
	}
	return n
}

func boardsStream() *types.Stream {
	return types.NewStream("boards", types.NullableObject(map[string]*types.Schema{
		"id":         types.NewSchema(types.String),
		"name":       types.NullableString(),
		"updated_at": types.NullableDateTime(),
	})).WithPrimaryKey("id").WithReplicationKey("updated_at")
}

func itemsStream() *types.Stream {
	return types.NewStream("items", types.NullableObject(map[string]*types.Schema{
		"id":         types.NewSchema(types.String),
		"board_id":   types.NewSchema(types.String),
		"updated_at": types.NullableDateTime(),
	})).WithPrimaryKey("id", "board_id").WithReplicationKey("updated_at").WithParent("boards")
}

func usersStream() *types.Stream {
	return types.NewStream("users", types.NullableObject(map[string]*types.Schema{
		"id":    types.NewSchema(types.String),
		"email": types.NullableString(),
	})).WithPrimaryKey("id")
}

func row(values ...string) map[string]any {
	out := map[string]any{}
	for i := 0; i+1 < len(values); i += 2 {
		out[values[i]] = values[i+1]
	}
	return out
}
