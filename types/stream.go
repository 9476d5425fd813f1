package types

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

type ReplicationMethod string

const (
	FullTable   ReplicationMethod = "FULL_TABLE"
	Incremental ReplicationMethod = "INCREMENTAL"
)

// Stream is a logical dataset the tap is able to produce
type Stream struct {
	Name                        string                  `json:"name"`
	Schema                      *Schema                 `json:"schema"`
	KeyProperties               []string                `json:"key_properties"`
	ReplicationKey              string                  `json:"replication_key,omitempty"`
	ReplicationMethod           ReplicationMethod       `json:"replication_method"`
	SupportedReplicationMethods *Set[ReplicationMethod] `json:"supported_replication_methods"`
	// Parent names the stream whose rows partition this stream
	Parent string `json:"parent,omitempty"`
}

func NewStream(name string, schema *Schema) *Stream {
	return &Stream{
		Name:                        name,
		Schema:                      schema,
		KeyProperties:               []string{},
		ReplicationMethod:           FullTable,
		SupportedReplicationMethods: NewSet(FullTable),
	}
}

func (s *Stream) WithPrimaryKey(keys ...string) *Stream {
	s.KeyProperties = append(s.KeyProperties, keys...)
	return s
}

// WithReplicationKey marks the stream incremental on key
func (s *Stream) WithReplicationKey(key string) *Stream {
	s.ReplicationKey = key
	s.ReplicationMethod = Incremental
	s.SupportedReplicationMethods.Insert(Incremental)
	return s
}

func (s *Stream) WithParent(parent string) *Stream {
	s.Parent = parent
	return s
}

func (s *Stream) SupportsIncremental() bool {
	return s.ReplicationKey != "" && s.SupportedReplicationMethods.Exists(Incremental)
}

// Fingerprint hashes the schema so configured and discovered versions can be compared
func (s *Stream) Fingerprint() (uint64, error) {
	hash, err := hashstructure.Hash(s.Schema, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fingerprint schema of stream[%s]: %s", s.Name, err)
	}
	return hash, nil
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream, len(streams))
	for _, stream := range streams {
		output[stream.Name] = stream
	}
	return output
}
