package destination

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"github.com/goccy/go-json"
)

type (
	WriterOption func(*MessageWriter)

	// MessageWriter writes one JSON message per line
	MessageWriter struct {
		mu           sync.Mutex
		out          *bufio.Writer
		statePath    string
		totalRecords atomic.Int64
		streamCounts sync.Map // stream -> *atomic.Int64
	}
)

// WithStatePath additionally persists every emitted state to path
func WithStatePath(path string) WriterOption {
	return func(w *MessageWriter) {
		w.statePath = path
	}
}

func NewWriter(out io.Writer, options ...WriterOption) *MessageWriter {
	w := &MessageWriter{
		out: bufio.NewWriter(out),
	}
	for _, one := range options {
		one(w)
	}
	return w
}

func (w *MessageWriter) Schema(stream *types.Stream, schema *types.Schema) error {
	return w.Message(types.NewSchemaMessage(stream, schema))
}

func (w *MessageWriter) Record(stream string, record types.Record, extractedAt time.Time) error {
	if err := w.write(types.NewRecordMessage(stream, record, extractedAt), false); err != nil {
		return err
	}

	w.totalRecords.Add(1)
	counter, _ := w.streamCounts.LoadOrStore(stream, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
	return nil
}

func (w *MessageWriter) State(state *types.State) error {
	if err := w.write(types.NewStateMessage(state), true); err != nil {
		return err
	}

	if w.statePath == "" {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}
	if err := utils.WriteFileAtomic(w.statePath, data); err != nil {
		return fmt.Errorf("failed to persist state to %s: %s", w.statePath, err)
	}
	return nil
}

// Message writes any message and flushes it
func (w *MessageWriter) Message(msg *types.Message) error {
	return w.write(msg, true)
}

func (w *MessageWriter) write(msg *types.Message, flush bool) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %s", msg.Type, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s message: %s", msg.Type, err)
	}
	if flush {
		return w.out.Flush()
	}
	return nil
}

func (w *MessageWriter) TotalRecords() int64 {
	return w.totalRecords.Load()
}

func (w *MessageWriter) RecordCount(stream string) int64 {
	counter, found := w.streamCounts.Load(stream)
	if !found {
		return 0
	}
	return counter.(*atomic.Int64).Load()
}

func (w *MessageWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	logger.Infof("Total records written: %d", w.totalRecords.Load())
	return w.out.Flush()
}
