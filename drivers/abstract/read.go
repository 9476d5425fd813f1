package abstract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/datazip-inc/tap-monday/destination"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

// selection is a stream chosen for sync together with its configured entry
type selection struct {
	stream *types.Stream
	entry  *types.CatalogEntry
	// emit is false for parents fetched only to partition their children
	emit bool
}

// Read syncs every selected stream in discovery order and returns the final state.
// A nil catalog selects every stream.
func (a *AbstractDriver) Read(ctx context.Context, catalog *types.Catalog, state *types.State, writer destination.Writer) (*types.State, error) {
	runID := utils.ULID()
	startTime := time.Now()

	if state == nil {
		state = types.NewState()
	}
	state.Initialize()

	streams, err := a.Discover(ctx)
	if err != nil {
		return state, err
	}
	if catalog == nil {
		catalog = types.GetWrappedCatalog(streams)
	}

	selections, err := a.classify(catalog, streams)
	if err != nil {
		return state, err
	}

	logger.Infof("sync run %s started for streams: %s", runID, strings.Join(selectedNames(selections), ", "))

	// child partitions by parent stream name
	partitions := map[string][]types.Context{}
	collects := map[string]bool{}
	for _, sel := range selections {
		if sel.stream.Parent != "" {
			collects[sel.stream.Parent] = true
		}
	}
	selections = resumeAt(selections, state.CurrentlySyncing, collects)

	for _, sel := range selections {
		streamPartitions := []types.Context{nil}
		if sel.stream.Parent != "" {
			streamPartitions = partitions[sel.stream.Parent]
		}

		run := &streamRun{
			driver:  a.driver,
			stream:  sel.stream,
			entry:   sel.entry,
			state:   state,
			writer:  writer,
			emit:    sel.emit,
			collect: collects[sel.stream.Name],
		}
		children, err := run.execute(ctx, streamPartitions)
		if err != nil {
			return state, err
		}
		if run.collect {
			partitions[sel.stream.Name] = children
		}
	}

	state.SetCurrentlySyncing("")
	if err := writer.State(state.Clone()); err != nil {
		return state, err
	}

	logger.Infof("sync run %s completed in %s", runID, time.Since(startTime).Round(time.Millisecond))
	return state, nil
}

// resumeAt drops the streams an interrupted run already finished. Parents
// among them are kept silent so their children still get partitions.
func resumeAt(selections []*selection, currentlySyncing string, collects map[string]bool) []*selection {
	if currentlySyncing == "" {
		return selections
	}
	idx, found := utils.ArrayContains(selections, func(sel *selection) bool {
		return sel.emit && sel.stream.Name == currentlySyncing
	})
	if !found {
		return selections
	}

	logger.Infof("resuming interrupted sync at stream %s", currentlySyncing)
	resumed := []*selection{}
	for _, sel := range selections[:idx] {
		if collects[sel.stream.Name] {
			resumed = append(resumed, &selection{stream: sel.stream, entry: sel.entry, emit: false})
		}
	}
	return append(resumed, selections[idx:]...)
}

// classify keeps selected streams valid against the source and adds the
// parents they depend on, preserving discovery order
func (a *AbstractDriver) classify(catalog *types.Catalog, streams []*types.Stream) ([]*selection, error) {
	sourceMap := types.StreamsToMap(streams...)
	selected := map[string]*types.CatalogEntry{}

	for _, name := range catalog.SelectedStreams() {
		entry, _ := catalog.Get(name)
		source, found := sourceMap[name]
		if !found {
			logger.Warnf("Skipping; configured stream %s not found in source", name)
			continue
		}
		if err := entry.Validate(source); err != nil {
			logger.Warnf("Skipping; configured stream %s found invalid due to reason: %s", name, err)
			continue
		}
		warnOnSchemaDrift(entry, source)
		selected[name] = entry
	}

	if len(selected) == 0 {
		return nil, &types.ConfigurationError{Err: fmt.Errorf("no valid streams found in catalog")}
	}

	required := map[string]bool{}
	for name := range selected {
		for parent := sourceMap[name].Parent; parent != ""; parent = sourceMap[parent].Parent {
			required[parent] = true
		}
	}

	selections := []*selection{}
	for _, stream := range streams {
		entry, isSelected := selected[stream.Name]
		if !isSelected && !required[stream.Name] {
			continue
		}
		if !isSelected {
			logger.Infof("stream %s is not selected, fetching it only to partition its children", stream.Name)
			entry = types.NewCatalogEntry(stream)
		}
		selections = append(selections, &selection{stream: stream, entry: entry, emit: isSelected})
	}

	return selections, nil
}

func warnOnSchemaDrift(entry *types.CatalogEntry, source *types.Stream) {
	configured := &types.Stream{Name: entry.Name(), Schema: entry.Schema}
	configuredHash, err := configured.Fingerprint()
	if err != nil {
		logger.Debugf("skipping schema drift check: %s", err)
		return
	}
	sourceHash, err := source.Fingerprint()
	if err != nil {
		logger.Debugf("skipping schema drift check: %s", err)
		return
	}
	if configuredHash != sourceHash {
		logger.Warnf("catalog schema of stream %s differs from the source schema; run discover to refresh the catalog", source.Name)
	}
}

func selectedNames(selections []*selection) []string {
	names := []string{}
	for _, sel := range selections {
		if sel.emit {
			names = append(names, sel.stream.Name)
		}
	}
	return names
}
