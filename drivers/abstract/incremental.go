package abstract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datazip-inc/tap-monday/destination"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"github.com/datazip-inc/tap-monday/utils/typeutils"
)

// streamRun syncs one stream across its partitions. State is only touched
// when the stream is emitted.
type streamRun struct {
	driver  DriverInterface
	stream  *types.Stream
	entry   *types.CatalogEntry
	state   *types.State
	writer  destination.Writer
	emit    bool
	collect bool

	schema      *types.Schema
	method      types.ReplicationMethod
	key         string
	streamState *types.StreamState
	children    []types.Context
	seen        map[string]bool
}

// partitionRun is the position inside one partition
type partitionRun struct {
	context types.Context
	// token of the first page to request
	token string
	// pages are fetched without emitting until this token is requested
	replayUntil string
	// silent partitions only collect child contexts
	silent     bool
	lowerBound any
	runningMax any
}

func (r *streamRun) execute(ctx context.Context, partitions []types.Context) ([]types.Context, error) {
	r.schema = r.entry.SelectedSchema()
	r.method = r.entry.Method()
	r.key = r.entry.Key()
	r.seen = map[string]bool{}
	r.streamState = &types.StreamState{}

	resuming := false
	if r.emit {
		r.streamState = r.state.Get(r.stream.Name)
		resuming = r.streamState.InProgress()
		if !resuming {
			r.streamState.ProgressMarkers = &types.ProgressMarkers{}
		}
		r.state.SetCurrentlySyncing(r.stream.Name)
		if err := r.writer.Schema(r.stream, r.schema); err != nil {
			return nil, err
		}
		if err := r.checkpoint(); err != nil {
			return nil, err
		}
	}

	log := logger.WithStream(r.stream.Name)
	log.Info().Str("method", string(r.method)).Int("partitions", len(partitions)).Bool("resuming", resuming).Msg("starting stream sync")

	for _, partition := range partitions {
		run := &partitionRun{context: partition}

		if resuming && r.streamState.PartitionCompleted(partition) {
			if !r.collect {
				continue
			}
			run.silent = true
		}

		markers := r.streamState.ProgressMarkers
		if resuming && !run.silent && markers.NextPageToken != "" && markers.Context.Key() == partition.Key() {
			run.runningMax = markers.ReplicationKeyValue
			if r.collect {
				run.replayUntil = markers.NextPageToken
			} else {
				run.token = markers.NextPageToken
			}
			log.Info().Str("partition", partition.Key()).Str("page_token", markers.NextPageToken).Msg("resuming partition")
		}

		if err := r.syncPartition(ctx, run); err != nil {
			return nil, &types.SyncError{Stream: r.stream.Name, Bookmark: r.streamState.Bookmark(partition), Err: err}
		}
	}

	if r.emit {
		r.streamState.ProgressMarkers = nil
		r.state.Set(r.stream.Name, r.streamState)
		if err := r.writer.State(r.state.Clone()); err != nil {
			return nil, err
		}
	}

	log.Info().Int("child_partitions", len(r.children)).Msg("finished stream sync")
	return r.children, nil
}

func (r *streamRun) syncPartition(ctx context.Context, run *partitionRun) error {
	committed := r.streamState.Bookmark(run.context)
	if r.method == types.Incremental {
		run.lowerBound = typeutils.MaxBookmark(r.driver.StartDate(), committed)
		run.runningMax = typeutils.MaxBookmark(run.runningMax, committed)
	}
	initialMax := run.runningMax

	token := run.token
	emitting := r.emit && !run.silent && run.replayUntil == ""
	restarted := false

	for {
		if !emitting && r.emit && !run.silent && token == run.replayUntil {
			emitting = true
		}

		page, err := r.driver.FetchPage(ctx, r.stream, run.context, token)
		if errors.Is(err, types.ErrInvalidPageToken) && token != "" && !restarted {
			logger.Warnf("page token of stream %s partition [%s] expired, restarting the partition", r.stream.Name, run.context.Key())
			token, run.replayUntil, run.runningMax, restarted = "", "", initialMax, true
			emitting = r.emit && !run.silent
			continue
		}
		if err != nil {
			return err
		}
		extractedAt := time.Now()

		for _, row := range page.Rows {
			if err := r.processRow(run, row, emitting, extractedAt); err != nil {
				return err
			}
		}

		if emitting {
			markers := r.streamState.ProgressMarkers
			markers.Context = run.context
			markers.NextPageToken = page.NextPageToken
			markers.ReplicationKeyValue = run.runningMax
			if err := r.checkpoint(); err != nil {
				return err
			}
		}

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	if r.emit && !run.silent && !emitting {
		// the saved token never came back, so nothing after it was emitted
		logger.Warnf("resume token of stream %s was not reached, syncing partition [%s] again", r.stream.Name, run.context.Key())
		return r.syncPartition(ctx, &partitionRun{context: run.context})
	}

	if !r.emit || run.silent {
		return nil
	}

	if r.method == types.Incremental && run.runningMax != nil {
		r.streamState.Commit(run.context, r.key, run.runningMax)
	}
	markers := r.streamState.ProgressMarkers
	markers.CompletedPartitions = append(markers.CompletedPartitions, run.context.Key())
	markers.Context = nil
	markers.NextPageToken = ""
	markers.ReplicationKeyValue = nil
	return r.checkpoint()
}

// processRow builds a record out of a raw row: transform, conform, validate
func (r *streamRun) processRow(run *partitionRun, row map[string]any, emitting bool, extractedAt time.Time) error {
	record, err := r.driver.Transform(r.stream, run.context, row)
	if err != nil {
		return fmt.Errorf("failed to transform row: %s", err)
	}

	if r.collect {
		if child := r.driver.ChildContext(r.stream, record); len(child) > 0 && !r.seen[child.Key()] {
			r.seen[child.Key()] = true
			r.children = append(r.children, child)
		}
	}

	if r.method == types.Incremental {
		value := record[r.key]
		if value != nil && run.lowerBound != nil && typeutils.CompareBookmarks(value, run.lowerBound) < 0 {
			return nil
		}
		if value != nil {
			run.runningMax = typeutils.MaxBookmark(run.runningMax, value)
		}
	}

	if !emitting {
		return nil
	}

	record = r.schema.ConformRecord(record)
	if err := r.schema.Validate(record); err != nil {
		return err
	}
	return r.writer.Record(r.stream.Name, record, extractedAt)
}

func (r *streamRun) checkpoint() error {
	r.state.Set(r.stream.Name, r.streamState)
	return r.writer.State(r.state.Clone())
}
