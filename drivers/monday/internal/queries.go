package driver

import (
	"fmt"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Query is a parsed GraphQL operation together with the variables it cannot run without
type Query struct {
	Name     string
	Text     string
	required []string
}

func mustParseQuery(name, text string) *Query {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: text})
	if err != nil {
		panic(fmt.Sprintf("invalid query %s: %s", name, err))
	}
	if len(doc.Operations) != 1 {
		panic(fmt.Sprintf("query %s must contain exactly one operation", name))
	}

	query := &Query{Name: name, Text: text}
	for _, variable := range doc.Operations[0].VariableDefinitions {
		if variable.Type.NonNull && variable.DefaultValue == nil {
			query.required = append(query.required, variable.Variable)
		}
	}
	return query
}

// CheckVariables fails on required variables that are missing or null
func (q *Query) CheckVariables(variables map[string]any) error {
	for _, name := range q.required {
		if value, found := variables[name]; !found || value == nil {
			return fmt.Errorf("query %s: missing required variable $%s", q.Name, name)
		}
	}
	return nil
}

const columnValuesFragment = `
	column_values {
		column {
			id
			title
		}
		id
		type
		... on BoardRelationValue {
			linked_item_ids
		}
		value
	}`

var (
	meQuery = mustParseQuery("me", `
query {
	me {
		id
		name
		email
	}
}`)

	workspacesQuery = mustParseQuery("workspaces", `
query {
	workspaces {
		id
		name
		description
	}
}`)

	boardsQuery = mustParseQuery("boards", fmt.Sprintf(`
query ($page: Int!, $board_limit: Int!) {
	boards(limit: $board_limit, page: $page) {
		id
		name
		description
		state
		board_kind
		permissions
		creator {
			id
			name
		}
		updated_at
		workspace_id
		items_page(limit: %d, query_params: {order_by: {column_id: "__last_updated__", direction: desc}}) {
			items {
				id
				name
				created_at
				creator_id
				email
				relative_link
				state
				updated_at
				url
				%s
			}
		}
	}
}`, constants.BoardItemsLimit, columnValuesFragment))

	boardViewsQuery = mustParseQuery("board_views", `
query ($board_id: [ID!]!) {
	boards(ids: $board_id) {
		id
		views {
			id
			name
			type
			settings_str
			view_specific_data_str
		}
	}
}`)

	groupsQuery = mustParseQuery("groups", `
query ($board_id: [ID!]!) {
	boards(ids: $board_id) {
		id
		groups {
			id
			title
			position
			color
			archived
		}
	}
}`)

	columnsQuery = mustParseQuery("columns", `
query ($board_id: [ID!]!) {
	boards(ids: $board_id) {
		id
		columns {
			id
			title
			type
			settings_str
			archived
			width
		}
	}
}`)

	itemsQuery = mustParseQuery("items", fmt.Sprintf(`
query ($board_id: [ID!]!, $cursor: String, $limit: Int!) {
	boards(ids: $board_id) {
		id
		items_page(cursor: $cursor, limit: $limit) {
			cursor
			items {
				id
				name
				created_at
				creator_id
				email
				relative_link
				state
				updated_at
				url
				group {
					id
				}
				%s
			}
		}
	}
}`, columnValuesFragment))

	usersQuery = mustParseQuery("users", `
query {
	users {
		id
		name
		email
		enabled
		is_admin
		is_guest
		url
		teams {
			id
			name
		}
		created_at
	}
}`)
)
