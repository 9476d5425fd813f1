package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/goccy/go-json"
)

// State is the resumable position of a sync; one StreamState per stream
type State struct {
	*sync.RWMutex `json:"-"`

	Version          int                     `json:"version,omitempty"`
	CurrentlySyncing string                  `json:"currently_syncing,omitempty"`
	Bookmarks        map[string]*StreamState `json:"bookmarks"`
}

type StreamState struct {
	ReplicationKey      string            `json:"replication_key,omitempty"`
	ReplicationKeyValue any               `json:"replication_key_value,omitempty"`
	Partitions          []*PartitionState `json:"partitions,omitempty"`
	ProgressMarkers     *ProgressMarkers  `json:"progress_markers,omitempty"`
}

type PartitionState struct {
	Context             Context `json:"context"`
	ReplicationKey      string  `json:"replication_key,omitempty"`
	ReplicationKeyValue any     `json:"replication_key_value,omitempty"`
}

// ProgressMarkers track an unfinished stream so a restart resumes mid way
type ProgressMarkers struct {
	Context             Context  `json:"context,omitempty"`
	NextPageToken       string   `json:"next_page_token,omitempty"`
	ReplicationKeyValue any      `json:"replication_key_value,omitempty"`
	CompletedPartitions []string `json:"completed_partitions,omitempty"`
}

// Context identifies a partition of a child stream, e.g. {"board_id": "42"}
type Context map[string]string

// Key is a stable string form of the context
func (c Context) Key() string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, c[k])
	}
	return strings.Join(parts, ",")
}

func NewState() *State {
	return &State{
		RWMutex:   &sync.RWMutex{},
		Version:   constants.LatestStateVersion,
		Bookmarks: make(map[string]*StreamState),
	}
}

// Initialize fills in what an unmarshalled state file may be missing
func (s *State) Initialize() *State {
	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]*StreamState)
	}
	if s.Version == 0 {
		s.Version = constants.LatestStateVersion
	}
	return s
}

// Get returns a copy of the stream state, never nil
func (s *State) Get(stream string) *StreamState {
	s.RLock()
	defer s.RUnlock()

	if ss, found := s.Bookmarks[stream]; found && ss != nil {
		return ss.Copy()
	}
	return &StreamState{}
}

// Set replaces the state of one stream atomically
func (s *State) Set(stream string, ss *StreamState) {
	s.Lock()
	defer s.Unlock()

	s.Bookmarks[stream] = ss.Copy()
}

func (s *State) SetCurrentlySyncing(stream string) {
	s.Lock()
	defer s.Unlock()

	s.CurrentlySyncing = stream
}

// Clone returns a deep copy safe to hand to other goroutines or serialize later
func (s *State) Clone() *State {
	s.RLock()
	defer s.RUnlock()

	out := &State{
		RWMutex:          &sync.RWMutex{},
		Version:          s.Version,
		CurrentlySyncing: s.CurrentlySyncing,
		Bookmarks:        make(map[string]*StreamState, len(s.Bookmarks)),
	}
	for name, ss := range s.Bookmarks {
		out.Bookmarks[name] = ss.Copy()
	}
	return out
}

func (s *State) MarshalJSON() ([]byte, error) {
	if s.RWMutex != nil {
		s.RLock()
		defer s.RUnlock()
	}

	type Alias State
	return json.Marshal(&struct {
		*Alias
	}{
		Alias: (*Alias)(s),
	})
}

func (ss *StreamState) Copy() *StreamState {
	if ss == nil {
		return &StreamState{}
	}
	out := &StreamState{
		ReplicationKey:      ss.ReplicationKey,
		ReplicationKeyValue: ss.ReplicationKeyValue,
	}
	for _, partition := range ss.Partitions {
		out.Partitions = append(out.Partitions, &PartitionState{
			Context:             partition.Context.copy(),
			ReplicationKey:      partition.ReplicationKey,
			ReplicationKeyValue: partition.ReplicationKeyValue,
		})
	}
	if ss.ProgressMarkers != nil {
		out.ProgressMarkers = &ProgressMarkers{
			Context:             ss.ProgressMarkers.Context.copy(),
			NextPageToken:       ss.ProgressMarkers.NextPageToken,
			ReplicationKeyValue: ss.ProgressMarkers.ReplicationKeyValue,
			CompletedPartitions: append([]string{}, ss.ProgressMarkers.CompletedPartitions...),
		}
	}
	return out
}

// Bookmark returns the committed replication value of a partition (nil context for unpartitioned streams)
func (ss *StreamState) Bookmark(ctx Context) any {
	if len(ctx) == 0 {
		return ss.ReplicationKeyValue
	}
	key := ctx.Key()
	for _, partition := range ss.Partitions {
		if partition.Context.Key() == key {
			return partition.ReplicationKeyValue
		}
	}
	return nil
}

// Commit records value as the committed bookmark of a partition
func (ss *StreamState) Commit(ctx Context, replicationKey string, value any) {
	if len(ctx) == 0 {
		ss.ReplicationKey = replicationKey
		ss.ReplicationKeyValue = value
		return
	}
	key := ctx.Key()
	for _, partition := range ss.Partitions {
		if partition.Context.Key() == key {
			partition.ReplicationKey = replicationKey
			partition.ReplicationKeyValue = value
			return
		}
	}
	ss.Partitions = append(ss.Partitions, &PartitionState{
		Context:             ctx.copy(),
		ReplicationKey:      replicationKey,
		ReplicationKeyValue: value,
	})
}

func (ss *StreamState) InProgress() bool {
	return ss.ProgressMarkers != nil
}

func (ss *StreamState) PartitionCompleted(ctx Context) bool {
	if ss.ProgressMarkers == nil {
		return false
	}
	key := ctx.Key()
	for _, done := range ss.ProgressMarkers.CompletedPartitions {
		if done == key {
			return true
		}
	}
	return false
}

func (c Context) copy() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
