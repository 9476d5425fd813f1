package types

import "time"

// Message is the line delimited envelope written to stdout
type Message struct {
	Type               MessageType    `json:"type"`
	Stream             string         `json:"stream,omitempty"`
	Schema             *Schema        `json:"schema,omitempty"`
	KeyProperties      []string       `json:"key_properties,omitempty"`
	BookmarkProperties []string       `json:"bookmark_properties,omitempty"`
	Record             Record         `json:"record,omitempty"`
	TimeExtracted      *time.Time     `json:"time_extracted,omitempty"`
	Value              *State         `json:"value,omitempty"`
	Catalog            *Catalog       `json:"catalog,omitempty"`
	ConnectionStatus   *StatusRow     `json:"connectionStatus,omitempty"`
	Spec               map[string]any `json:"spec,omitempty"`
}

// StatusRow is a dto for check command result serialization
type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

func NewSchemaMessage(stream *Stream, schema *Schema) *Message {
	msg := &Message{
		Type:          SchemaMessage,
		Stream:        stream.Name,
		Schema:        schema,
		KeyProperties: stream.KeyProperties,
	}
	if stream.ReplicationKey != "" {
		msg.BookmarkProperties = []string{stream.ReplicationKey}
	}
	return msg
}

func NewRecordMessage(stream string, record Record, extractedAt time.Time) *Message {
	extracted := extractedAt.UTC()
	return &Message{
		Type:          RecordMessage,
		Stream:        stream,
		Record:        record,
		TimeExtracted: &extracted,
	}
}

func NewStateMessage(state *State) *Message {
	return &Message{
		Type:  StateMessage,
		Value: state,
	}
}
