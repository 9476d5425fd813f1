package types

import (
	"fmt"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/utils"
)

// Catalog is the set of streams a tap produces along with their selection
type Catalog struct {
	Streams []*CatalogEntry `json:"streams"`
}

type CatalogEntry struct {
	TapStreamID       string            `json:"tap_stream_id"`
	Stream            string            `json:"stream"`
	Schema            *Schema           `json:"schema"`
	KeyProperties     []string          `json:"key_properties"`
	ReplicationKey    string            `json:"replication_key,omitempty"`
	ReplicationMethod ReplicationMethod `json:"replication_method,omitempty"`
	Metadata          []*MetadataEntry  `json:"metadata"`
}

type MetadataEntry struct {
	Breadcrumb []string  `json:"breadcrumb"`
	Metadata   *Metadata `json:"metadata"`
}

type Metadata struct {
	Selected             *bool    `json:"selected,omitempty"`
	SelectedByDefault    *bool    `json:"selected-by-default,omitempty"`
	Inclusion            string   `json:"inclusion,omitempty"`
	TableKeyProperties   []string `json:"table-key-properties,omitempty"`
	ValidReplicationKeys []string `json:"valid-replication-keys,omitempty"`
	ForcedReplication    string   `json:"forced-replication-method,omitempty"`
	ReplicationMethod    string   `json:"replication-method,omitempty"`
	ReplicationKey       string   `json:"replication-key,omitempty"`
	ParentTapStreamID    string   `json:"parent-tap-stream-id,omitempty"`
}

// GetWrappedCatalog builds a catalog out of discovered streams with every stream selected by default
func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		Streams: []*CatalogEntry{},
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, NewCatalogEntry(stream))
	}

	return catalog
}

func NewCatalogEntry(stream *Stream) *CatalogEntry {
	selectedByDefault := true
	root := &Metadata{
		SelectedByDefault:  &selectedByDefault,
		Inclusion:          constants.InclusionAvailable,
		TableKeyProperties: stream.KeyProperties,
		ParentTapStreamID:  stream.Parent,
	}
	if stream.ReplicationKey != "" {
		root.ValidReplicationKeys = []string{stream.ReplicationKey}
	}
	if stream.SupportedReplicationMethods.Len() == 1 {
		root.ForcedReplication = string(stream.ReplicationMethod)
	}

	entry := &CatalogEntry{
		TapStreamID:       stream.Name,
		Stream:            stream.Name,
		Schema:            stream.Schema,
		KeyProperties:     stream.KeyProperties,
		ReplicationKey:    stream.ReplicationKey,
		ReplicationMethod: stream.ReplicationMethod,
		Metadata:          []*MetadataEntry{{Breadcrumb: []string{}, Metadata: root}},
	}

	for _, name := range stream.Schema.PropertyNames() {
		inclusion := constants.InclusionAvailable
		_, isKey := utils.ArrayContains(stream.KeyProperties, func(key string) bool { return key == name })
		if isKey || name == stream.ReplicationKey {
			inclusion = constants.InclusionAutomatic
		}
		entry.Metadata = append(entry.Metadata, &MetadataEntry{
			Breadcrumb: []string{"properties", name},
			Metadata:   &Metadata{Inclusion: inclusion, SelectedByDefault: &selectedByDefault},
		})
	}

	return entry
}

func (c *Catalog) Get(stream string) (*CatalogEntry, bool) {
	for _, entry := range c.Streams {
		if entry.TapStreamID == stream || entry.Stream == stream {
			return entry, true
		}
	}
	return nil, false
}

// SelectedStreams returns the names of selected entries in catalog order
func (c *Catalog) SelectedStreams() []string {
	names := []string{}
	for _, entry := range c.Streams {
		if entry.IsSelected() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func (e *CatalogEntry) Name() string {
	return utils.Ternary(e.TapStreamID != "", e.TapStreamID, e.Stream).(string)
}

func (e *CatalogEntry) rootMetadata() *Metadata {
	return e.breadcrumbMetadata()
}

func (e *CatalogEntry) breadcrumbMetadata(breadcrumb ...string) *Metadata {
	for _, entry := range e.Metadata {
		if entry == nil || entry.Metadata == nil || len(entry.Breadcrumb) != len(breadcrumb) {
			continue
		}
		match := true
		for i := range breadcrumb {
			if entry.Breadcrumb[i] != breadcrumb[i] {
				match = false
				break
			}
		}
		if match {
			return entry.Metadata
		}
	}
	return nil
}

// IsSelected follows explicit selection first and falls back to selected-by-default
func (e *CatalogEntry) IsSelected() bool {
	root := e.rootMetadata()
	if root == nil {
		return false
	}
	if root.Selected != nil {
		return *root.Selected
	}
	return root.SelectedByDefault != nil && *root.SelectedByDefault
}

// Method resolves the replication method chosen for the entry
func (e *CatalogEntry) Method() ReplicationMethod {
	if root := e.rootMetadata(); root != nil {
		if root.ForcedReplication != "" {
			return ReplicationMethod(root.ForcedReplication)
		}
		if root.ReplicationMethod != "" {
			return ReplicationMethod(root.ReplicationMethod)
		}
	}
	return utils.Ternary(e.ReplicationMethod == "", FullTable, e.ReplicationMethod).(ReplicationMethod)
}

// Key resolves the replication key chosen for the entry
func (e *CatalogEntry) Key() string {
	if root := e.rootMetadata(); root != nil && root.ReplicationKey != "" {
		return root.ReplicationKey
	}
	return e.ReplicationKey
}

// SelectedSchema returns a copy of the schema without deselected properties.
// Automatic properties always stay.
func (e *CatalogEntry) SelectedSchema() *Schema {
	schema := e.Schema.Copy()
	if schema == nil {
		return nil
	}
	for _, name := range schema.PropertyNames() {
		md := e.breadcrumbMetadata("properties", name)
		if md == nil || md.Inclusion == constants.InclusionAutomatic {
			continue
		}
		if md.Inclusion == constants.InclusionUnsupported || (md.Selected != nil && !*md.Selected) {
			delete(schema.Properties, name)
		}
	}
	return schema
}

// Validate configured entry against the stream offered by the source
func (e *CatalogEntry) Validate(source *Stream) error {
	method := e.Method()
	if !source.SupportedReplicationMethods.Exists(method) {
		return fmt.Errorf("invalid replication method[%s]; valid are %v", method, source.SupportedReplicationMethods)
	}

	if method == Incremental && e.Key() != source.ReplicationKey {
		return fmt.Errorf("invalid replication key [%s]; valid is [%s]", e.Key(), source.ReplicationKey)
	}

	return nil
}
