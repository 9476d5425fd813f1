package driver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/datazip-inc/tap-monday/drivers/abstract"
	"github.com/datazip-inc/tap-monday/types"
)

const (
	workspacesStream = "workspaces"
	boardsStream     = "boards"
	boardViewsStream = "board_views"
	groupsStream     = "groups"
	columnsStream    = "columns"
	itemsStream      = "items"
	usersStream      = "users"
)

// streamOrder is the registration order; parents precede their children
var streamOrder = []string{
	workspacesStream,
	boardsStream,
	boardViewsStream,
	groupsStream,
	columnsStream,
	itemsStream,
	usersStream,
}

type streamDefinition struct {
	stream    func() *types.Stream
	fetch     func(ctx context.Context, m *Monday, partition types.Context, token string) (*abstract.Page, error)
	transform func(partition types.Context, row map[string]any) (types.Record, error)
}

// boardData is the shape shared by every query scoped to board ids
type boardData struct {
	ID        string           `json:"id"`
	Views     []map[string]any `json:"views"`
	Groups    []map[string]any `json:"groups"`
	Columns   []map[string]any `json:"columns"`
	ItemsPage *struct {
		Cursor *string          `json:"cursor"`
		Items  []map[string]any `json:"items"`
	} `json:"items_page"`
}

var definitions = map[string]*streamDefinition{
	workspacesStream: {
		stream: func() *types.Stream {
			return types.NewStream(workspacesStream, workspacesSchema()).WithPrimaryKey("id")
		},
		fetch: func(ctx context.Context, m *Monday, _ types.Context, _ string) (*abstract.Page, error) {
			var out struct {
				Workspaces []map[string]any `json:"workspaces"`
			}
			if err := m.client.Execute(ctx, workspacesQuery, nil, &out); err != nil {
				return nil, err
			}
			return &abstract.Page{Rows: out.Workspaces}, nil
		},
		transform: identity,
	},
	boardsStream: {
		stream: func() *types.Stream {
			return types.NewStream(boardsStream, boardsSchema()).WithPrimaryKey("id").WithReplicationKey("updated_at")
		},
		fetch:     fetchBoards,
		transform: transformBoard,
	},
	boardViewsStream: {
		stream: func() *types.Stream {
			return types.NewStream(boardViewsStream, boardViewsSchema()).WithPrimaryKey("id", "board_id").WithParent(boardsStream)
		},
		fetch: fetchBoardChildren(boardViewsQuery, func(board *boardData) []map[string]any {
			return board.Views
		}),
		transform: withBoardID,
	},
	groupsStream: {
		stream: func() *types.Stream {
			return types.NewStream(groupsStream, groupsSchema()).WithPrimaryKey("id", "board_id").WithParent(boardsStream)
		},
		fetch: fetchBoardChildren(groupsQuery, func(board *boardData) []map[string]any {
			return board.Groups
		}),
		transform: transformGroup,
	},
	columnsStream: {
		stream: func() *types.Stream {
			return types.NewStream(columnsStream, columnsSchema()).WithPrimaryKey("id", "board_id").WithParent(boardsStream)
		},
		fetch: fetchBoardChildren(columnsQuery, func(board *boardData) []map[string]any {
			return board.Columns
		}),
		transform: transformColumn,
	},
	itemsStream: {
		stream: func() *types.Stream {
			return types.NewStream(itemsStream, itemsSchema()).WithPrimaryKey("id", "board_id").WithReplicationKey("updated_at").WithParent(boardsStream)
		},
		fetch:     fetchItems,
		transform: transformItem,
	},
	usersStream: {
		stream: func() *types.Stream {
			return types.NewStream(usersStream, usersSchema()).WithPrimaryKey("id")
		},
		fetch: func(ctx context.Context, m *Monday, _ types.Context, _ string) (*abstract.Page, error) {
			var out struct {
				Users []map[string]any `json:"users"`
			}
			if err := m.client.Execute(ctx, usersQuery, nil, &out); err != nil {
				return nil, err
			}
			return &abstract.Page{Rows: out.Users}, nil
		},
		transform: identity,
	},
}

// fetchBoards pages with page numbers starting at 1 and stops at the first short page
func fetchBoards(ctx context.Context, m *Monday, _ types.Context, token string) (*abstract.Page, error) {
	page := 1
	if token != "" {
		parsed, err := strconv.Atoi(token)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("%w: board page %q", types.ErrInvalidPageToken, token)
		}
		page = parsed
	}

	var out struct {
		Boards []map[string]any `json:"boards"`
	}
	variables := map[string]any{"page": page, "board_limit": m.config.BoardLimit}
	if err := m.client.Execute(ctx, boardsQuery, variables, &out); err != nil {
		return nil, err
	}

	result := &abstract.Page{Rows: out.Boards}
	if len(out.Boards) == m.config.BoardLimit {
		result.NextPageToken = strconv.Itoa(page + 1)
	}
	return result, nil
}

func fetchBoardChildren(query *Query, rows func(board *boardData) []map[string]any) func(ctx context.Context, m *Monday, partition types.Context, token string) (*abstract.Page, error) {
	return func(ctx context.Context, m *Monday, partition types.Context, _ string) (*abstract.Page, error) {
		var out struct {
			Boards []*boardData `json:"boards"`
		}
		variables := map[string]any{"board_id": []string{partition["board_id"]}}
		if err := m.client.Execute(ctx, query, variables, &out); err != nil {
			return nil, err
		}

		page := &abstract.Page{}
		for _, board := range out.Boards {
			page.Rows = append(page.Rows, rows(board)...)
		}
		return page, nil
	}
}

// fetchItems follows the items_page cursor of one board
func fetchItems(ctx context.Context, m *Monday, partition types.Context, token string) (*abstract.Page, error) {
	var out struct {
		Boards []*boardData `json:"boards"`
	}
	variables := map[string]any{
		"board_id": []string{partition["board_id"]},
		"cursor":   nil,
		"limit":    m.config.ItemsPageSize,
	}
	if token != "" {
		variables["cursor"] = token
	}
	if err := m.client.Execute(ctx, itemsQuery, variables, &out); err != nil {
		return nil, err
	}

	page := &abstract.Page{}
	for _, board := range out.Boards {
		if board.ItemsPage == nil {
			continue
		}
		page.Rows = append(page.Rows, board.ItemsPage.Items...)
		if board.ItemsPage.Cursor != nil {
			page.NextPageToken = *board.ItemsPage.Cursor
		}
	}
	return page, nil
}

func identity(_ types.Context, row map[string]any) (types.Record, error) {
	record := make(types.Record, len(row))
	for key, value := range row {
		record[key] = value
	}
	return record, nil
}

// transformBoard flattens the embedded items page and renames creator to owner
func transformBoard(partition types.Context, row map[string]any) (types.Record, error) {
	record, _ := identity(partition, row)

	items := []any{}
	if itemsPage, ok := record["items_page"].(map[string]any); ok {
		if embedded, ok := itemsPage["items"].([]any); ok {
			items = embedded
		}
	}
	delete(record, "items_page")
	record["items"] = items

	if creator, found := record["creator"]; found {
		record["owner"] = creator
		delete(record, "creator")
	}
	return record, nil
}

func withBoardID(partition types.Context, row map[string]any) (types.Record, error) {
	record, _ := identity(partition, row)
	if boardID, found := partition["board_id"]; found {
		record["board_id"] = boardID
	}
	return record, nil
}

func transformGroup(partition types.Context, row map[string]any) (types.Record, error) {
	record, _ := withBoardID(partition, row)

	switch position := record["position"].(type) {
	case nil, float64:
	case string:
		parsed, err := strconv.ParseFloat(position, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid group position %q: %s", position, err)
		}
		record["position"] = parsed
	default:
		return nil, fmt.Errorf("invalid group position of type %T", position)
	}
	return record, nil
}

func transformColumn(partition types.Context, row map[string]any) (types.Record, error) {
	record, _ := withBoardID(partition, row)

	switch width := record["width"].(type) {
	case nil:
		record["width"] = "0"
	case float64:
		record["width"] = strconv.FormatFloat(width, 'f', -1, 64)
	case string:
	default:
		record["width"] = fmt.Sprint(width)
	}
	return record, nil
}

func transformItem(partition types.Context, row map[string]any) (types.Record, error) {
	record, _ := withBoardID(partition, row)

	record["group_id"] = nil
	if group, ok := record["group"].(map[string]any); ok {
		record["group_id"] = group["id"]
	}
	delete(record, "group")

	if creator, ok := record["creator"].(map[string]any); ok {
		if _, found := record["creator_id"]; !found {
			record["creator_id"] = creator["id"]
		}
	}
	delete(record, "creator")
	return record, nil
}
