package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/tap-monday/types"
)

func TestTransforms(t *testing.T) {
	board := types.Context{"board_id": "42"}

	tests := []struct {
		name      string
		stream    string
		partition types.Context
		row       map[string]any
		want      types.Record
	}{
		{
			name:   "board flattens items and renames creator",
			stream: boardsStream,
			row: map[string]any{
				"id":           "42",
				"workspace_id": float64(7),
				"updated_at":   "2024-02-01T10:00:00Z",
				"creator":      map[string]any{"id": "9", "name": "Ada"},
				"items_page":   map[string]any{"items": []any{map[string]any{"id": "100", "name": "Ship it"}}},
			},
			want: types.Record{
				"id":           "42",
				"workspace_id": "7",
				"updated_at":   "2024-02-01T10:00:00Z",
				"owner":        map[string]any{"id": "9", "name": "Ada"},
				"items":        []any{map[string]any{"id": "100", "name": "Ship it"}},
			},
		},
		{
			name:   "board without items page",
			stream: boardsStream,
			row:    map[string]any{"id": "42"},
			want:   types.Record{"id": "42", "items": []any{}},
		},
		{
			name:      "view gets the board id",
			stream:    boardViewsStream,
			partition: board,
			row:       map[string]any{"id": "v1", "type": "TableBoardView"},
			want:      types.Record{"id": "v1", "type": "TableBoardView", "board_id": "42"},
		},
		{
			name:      "group position becomes a number",
			stream:    groupsStream,
			partition: board,
			row:       map[string]any{"id": "topics", "position": "65536.5", "archived": false},
			want:      types.Record{"id": "topics", "position": 65536.5, "archived": false, "board_id": "42"},
		},
		{
			name:      "column without width",
			stream:    columnsStream,
			partition: board,
			row:       map[string]any{"id": "status", "width": nil},
			want:      types.Record{"id": "status", "width": "0", "board_id": "42"},
		},
		{
			name:      "column width becomes a string",
			stream:    columnsStream,
			partition: board,
			row:       map[string]any{"id": "status", "width": float64(120)},
			want:      types.Record{"id": "status", "width": "120", "board_id": "42"},
		},
		{
			name:      "item takes group and board ids",
			stream:    itemsStream,
			partition: board,
			row: map[string]any{
				"id":         "100",
				"updated_at": "2024-02-02T00:00:00Z",
				"creator_id": "9",
				"group":      map[string]any{"id": "topics"},
			},
			want: types.Record{
				"id":         "100",
				"updated_at": "2024-02-02T00:00:00Z",
				"creator_id": "9",
				"group_id":   "topics",
				"board_id":   "42",
			},
		},
		{
			name:   "users pass through",
			stream: usersStream,
			row:    map[string]any{"id": "9", "enabled": true, "teams": []any{map[string]any{"id": "1", "name": "core"}}},
			want:   types.Record{"id": "9", "enabled": true, "teams": []any{map[string]any{"id": "1", "name": "core"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			definition := definitions[tt.stream]
			record, err := definition.transform(tt.partition, tt.row)
			require.NoError(t, err)

			schema := definition.stream().Schema
			record = schema.ConformRecord(record)
			assert.Equal(t, tt.want, record)
			assert.NoError(t, schema.Validate(record))
		})
	}
}

func TestTransformGroup_InvalidPosition(t *testing.T) {
	_, err := transformGroup(types.Context{"board_id": "1"}, map[string]any{"position": "top"})
	assert.ErrorContains(t, err, "invalid group position")
}

func TestTransformDoesNotMutateRow(t *testing.T) {
	row := map[string]any{"id": "1", "creator": map[string]any{"id": "9"}}
	_, err := transformBoard(nil, row)
	require.NoError(t, err)
	assert.Contains(t, row, "creator")
	assert.NotContains(t, row, "owner")
}

func TestStreamDefinitions(t *testing.T) {
	require.Len(t, definitions, len(streamOrder))

	for idx, name := range streamOrder {
		stream := definitions[name].stream()
		assert.Equal(t, name, stream.Name)
		assert.NotEmpty(t, stream.KeyProperties)
		if stream.Parent != "" {
			parentIdx := -1
			for i, other := range streamOrder {
				if other == stream.Parent {
					parentIdx = i
				}
			}
			assert.Less(t, parentIdx, idx, "%s is registered after its parent", name)
		}
	}

	boards := definitions[boardsStream].stream()
	assert.True(t, boards.SupportsIncremental())
	assert.Equal(t, "updated_at", boards.ReplicationKey)
	assert.True(t, definitions[itemsStream].stream().SupportsIncremental())
	assert.False(t, definitions[usersStream].stream().SupportsIncremental())
	assert.Equal(t, []string{"id", "board_id"}, definitions[groupsStream].stream().KeyProperties)
}
