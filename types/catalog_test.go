package types

import (
	"testing"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStreams() []*Stream {
	boards := NewStream("boards", boardSchema()).WithPrimaryKey("id").WithReplicationKey("updated_at")
	groups := NewStream("groups", NullableObject(map[string]*Schema{
		"id":       NewSchema(String),
		"board_id": NewSchema(String),
		"title":    NullableString(),
	})).WithPrimaryKey("id", "board_id").WithParent("boards")
	return []*Stream{boards, groups}
}

func TestGetWrappedCatalog(t *testing.T) {
	catalog := GetWrappedCatalog(sampleStreams())
	require.Len(t, catalog.Streams, 2)

	boards, found := catalog.Get("boards")
	require.True(t, found)
	assert.True(t, boards.IsSelected(), "discovered streams are selected by default")
	assert.Equal(t, Incremental, boards.Method())
	assert.Equal(t, "updated_at", boards.Key())

	root := boards.rootMetadata()
	require.NotNil(t, root)
	assert.Equal(t, []string{"id"}, root.TableKeyProperties)
	assert.Equal(t, []string{"updated_at"}, root.ValidReplicationKeys)
	assert.Empty(t, root.ForcedReplication, "boards supports both methods")

	groups, _ := catalog.Get("groups")
	assert.Equal(t, string(FullTable), groups.rootMetadata().ForcedReplication)
	assert.Equal(t, "boards", groups.rootMetadata().ParentTapStreamID)
	assert.Equal(t, constants.InclusionAutomatic, groups.breadcrumbMetadata("properties", "board_id").Inclusion)
	assert.Equal(t, constants.InclusionAvailable, groups.breadcrumbMetadata("properties", "title").Inclusion)

	assert.Equal(t, []string{"boards", "groups"}, catalog.SelectedStreams())
}

func TestCatalogSelectionFromFile(t *testing.T) {
	raw := `{
	  "streams": [
	    {
	      "tap_stream_id": "boards",
	      "stream": "boards",
	      "schema": {"type": ["null", "object"], "properties": {"id": {"type": "string"}, "name": {"type": ["null", "string"]}, "updated_at": {"type": ["null", "string"], "format": "date-time"}}},
	      "key_properties": ["id"],
	      "replication_key": "updated_at",
	      "replication_method": "INCREMENTAL",
	      "metadata": [
	        {"breadcrumb": [], "metadata": {"selected": true, "replication-method": "FULL_TABLE"}},
	        {"breadcrumb": ["properties", "name"], "metadata": {"selected": false, "inclusion": "available"}},
	        {"breadcrumb": ["properties", "id"], "metadata": {"selected": false, "inclusion": "automatic"}}
	      ]
	    },
	    {
	      "tap_stream_id": "users",
	      "stream": "users",
	      "schema": {"type": "object", "properties": {"id": {"type": "string"}}},
	      "key_properties": ["id"],
	      "metadata": [{"breadcrumb": [], "metadata": {"selected": false, "selected-by-default": true}}]
	    },
	    {
	      "tap_stream_id": "workspaces",
	      "stream": "workspaces",
	      "schema": {"type": "object"},
	      "key_properties": ["id"],
	      "metadata": []
	    }
	  ]
	}`

	catalog := &Catalog{}
	require.NoError(t, json.Unmarshal([]byte(raw), catalog))

	assert.Equal(t, []string{"boards"}, catalog.SelectedStreams(), "explicit selection wins over selected-by-default")

	boards, _ := catalog.Get("boards")
	assert.Equal(t, FullTable, boards.Method(), "metadata overrides the entry replication method")

	selected := boards.SelectedSchema()
	assert.NotContains(t, selected.Properties, "name")
	assert.Contains(t, selected.Properties, "id", "automatic fields cannot be deselected")
	assert.Contains(t, selected.Properties, "updated_at")
	assert.Contains(t, boards.Schema.Properties, "name", "selection never mutates the catalog schema")
}

func TestCatalogEntryValidate(t *testing.T) {
	streams := StreamsToMap(sampleStreams()...)
	catalog := GetWrappedCatalog(sampleStreams())

	boards, _ := catalog.Get("boards")
	assert.NoError(t, boards.Validate(streams["boards"]))

	boards.rootMetadata().ReplicationKey = "created_at"
	assert.ErrorContains(t, boards.Validate(streams["boards"]), "invalid replication key")

	groups, _ := catalog.Get("groups")
	groups.rootMetadata().ForcedReplication = ""
	groups.rootMetadata().ReplicationMethod = string(Incremental)
	assert.ErrorContains(t, groups.Validate(streams["groups"]), "invalid replication method")
}

func TestStreamFingerprint(t *testing.T) {
	first, err := sampleStreams()[0].Fingerprint()
	require.NoError(t, err)
	second, err := sampleStreams()[0].Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed := sampleStreams()[0]
	changed.Schema.Properties["extra"] = NullableString()
	third, err := changed.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestSet(t *testing.T) {
	set := NewSet(FullTable, Incremental, FullTable)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []ReplicationMethod{FullTable, Incremental}, set.Array())
	assert.True(t, set.Exists(Incremental))

	var nilSet *Set[string]
	assert.False(t, nilSet.Exists("x"))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["FULL_TABLE","INCREMENTAL"]`, string(data))

	restored := &Set[ReplicationMethod]{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.True(t, restored.Exists(FullTable))
}
