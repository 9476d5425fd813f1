package driver

import (
	"github.com/datazip-inc/tap-monday/types"
)

func describe(schema *types.Schema, description string) *types.Schema {
	schema.Description = description
	return schema
}

func columnValueSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"column": types.NullableObject(map[string]*types.Schema{
			"id":    types.NullableString(),
			"title": types.NullableString(),
		}),
		"id":              types.NullableString(),
		"type":            types.NullableString(),
		"value":           types.NullableString(),
		"linked_item_ids": types.NullableArray(types.NullableString()),
	})
}

// itemProperties are shared by items and the items embedded in boards
func itemProperties() map[string]*types.Schema {
	return map[string]*types.Schema{
		"id":            describe(types.NullableString(), "The unique ID of the item"),
		"name":          describe(types.NullableString(), "The name of the item"),
		"created_at":    describe(types.NullableDateTime(), "The item's creation date"),
		"creator_id":    describe(types.NullableString(), "The unique identifier of the item's creator"),
		"email":         describe(types.NullableString(), "The item's email"),
		"relative_link": describe(types.NullableString(), "The item's relative path"),
		"state":         describe(types.NullableString(), "The state of the item"),
		"updated_at":    describe(types.NullableDateTime(), "The date the item was last updated"),
		"url":           describe(types.NullableString(), "The item's URL"),
		"column_values": types.NullableArray(columnValueSchema()),
	}
}

func workspacesSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":          describe(types.NullableString(), "The unique ID of the workspace"),
		"name":        describe(types.NullableString(), "The name of the workspace"),
		"description": describe(types.NullableString(), "The description of the workspace"),
	})
}

func boardsSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":          types.NullableString(),
		"name":        types.NullableString(),
		"description": types.NullableString(),
		"state":       types.NullableString(),
		"board_kind":  types.NullableString(),
		"permissions": types.NullableString(),
		"owner": types.NullableObject(map[string]*types.Schema{
			"id":   types.NullableString(),
			"name": types.NullableString(),
		}),
		"updated_at":   types.NullableDateTime(),
		"workspace_id": types.NullableString(),
		"items":        types.NullableArray(types.NullableObject(itemProperties())),
	})
}

func boardViewsSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":                     types.NullableString(),
		"name":                   types.NullableString(),
		"type":                   types.NullableString(),
		"settings_str":           types.NullableString(),
		"view_specific_data_str": types.NullableString(),
		"board_id":               types.NullableString(),
	})
}

func groupsSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":       describe(types.NullableString(), "The unique ID of the group"),
		"title":    describe(types.NullableString(), "The title of the group"),
		"position": describe(types.NullableNumber(), "The position of the group"),
		"color":    describe(types.NullableString(), "The color of the group"),
		"archived": describe(types.NullableBoolean(), "Whether the group is archived"),
		"board_id": describe(types.NullableString(), "The ID of the parent board"),
	})
}

func columnsSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":           describe(types.NullableString(), "The unique ID of the column"),
		"title":        describe(types.NullableString(), "The title of the column"),
		"type":         describe(types.NullableString(), "The type of the column"),
		"settings_str": describe(types.NullableString(), "Settings for the column"),
		"archived":     describe(types.NullableBoolean(), "Whether the column is archived"),
		"width":        describe(types.NullableString(), "The width of the column"),
		"board_id":     describe(types.NullableString(), "The ID of the parent board"),
	})
}

func itemsSchema() *types.Schema {
	properties := itemProperties()
	properties["board_id"] = describe(types.NullableString(), "The ID of the parent board")
	properties["group_id"] = describe(types.NullableString(), "The ID of the group the item belongs to")
	return types.NullableObject(properties)
}

func usersSchema() *types.Schema {
	return types.NullableObject(map[string]*types.Schema{
		"id":       describe(types.NullableString(), "The unique ID of the user"),
		"name":     describe(types.NullableString(), "The name of the user"),
		"email":    describe(types.NullableString(), "The email of the user"),
		"enabled":  describe(types.NullableBoolean(), "Whether the user is enabled"),
		"is_admin": describe(types.NullableBoolean(), "Whether the user is an admin"),
		"is_guest": describe(types.NullableBoolean(), "Whether the user is a guest"),
		"url":      describe(types.NullableString(), "The URL of the user's profile"),
		"teams": describe(types.NullableArray(types.NullableObject(map[string]*types.Schema{
			"id":   describe(types.NullableString(), "The unique ID of the team"),
			"name": describe(types.NullableString(), "The name of the team"),
		})), "The teams the user belongs to"),
		"created_at": describe(types.NullableDateTime(), "The date the user was created"),
	})
}
