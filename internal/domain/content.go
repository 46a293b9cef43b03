package domain

import "encoding/json"

// Per-type content payloads. The canvas engine never looks inside
// Block.Content; these structs exist for the editing edges (services,
// MCP tools, frontend bindings) that do.

// TextContent backs text blocks. Markdown lives in a file on disk so
// external editors can open it; the DB copy is for rendering.
type TextContent struct {
	Markdown string `json:"markdown"`
}

// TableContent backs table blocks fed by an external database connection.
type TableContent struct {
	ConnectionID string `json:"connectionId"`
	Query        string `json:"query"`
	RefreshCron  string `json:"refreshCron,omitempty"` // e.g. "@every 5m"; empty means manual refresh only
}

// FileContent backs file blocks linked to a path on disk.
type FileContent struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// TaskContent backs task blocks.
type TaskContent struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
	Due   string `json:"due,omitempty"` // ISO date, empty when unset
}

// GalleryContent backs gallery blocks.
type GalleryContent struct {
	ImagePaths []string `json:"imagePaths"`
}

// DefaultContent returns the initial Content JSON for a new block of the
// given type. Unknown types get an empty object.
func DefaultContent(t BlockType) string {
	var v any
	switch t {
	case BlockTypeText:
		v = TextContent{}
	case BlockTypeTable:
		v = TableContent{}
	case BlockTypeFile:
		v = FileContent{}
	case BlockTypeTask:
		v = TaskContent{}
	case BlockTypeGallery:
		v = GalleryContent{ImagePaths: []string{}}
	default:
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
