package models

import "encoding/json"

type KanbanCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssigneeID  string `json:"assigneeId,omitempty"`
}

type KanbanColumn struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Cards []KanbanCard `json:"cards"`
}

type KanbanBoard struct {
	Columns []KanbanColumn `json:"columns"`
}

func DefaultKanbanBoard() KanbanBoard {
	return KanbanBoard{Columns: []KanbanColumn{
		{ID: "todo", Title: "To do", Cards: []KanbanCard{}},
		{ID: "in-progress", Title: "In progress", Cards: []KanbanCard{}},
		{ID: "done", Title: "Done", Cards: []KanbanCard{}},
	}}
}

func ParseKanbanBoard(content string) (KanbanBoard, error) {
	var board KanbanBoard
	err := json.Unmarshal([]byte(content), &board)
	return board, err
}

type SpreadsheetCell struct {
	Value   string `json:"value"`
	Formula string `json:"formula,omitempty"`
}

type Spreadsheet struct {
	Rows  int                        `json:"rows"`
	Cols  int                        `json:"cols"`
	Cells map[string]SpreadsheetCell `json:"cells"`
}

// DefaultContent returns the serialized content a new artifact of the kind
// starts with.
func (k ArtifactKind) DefaultContent() string {
	var v any
	switch k {
	case KindKanban:
		v = DefaultKanbanBoard()
	case KindSpreadsheet:
		v = Spreadsheet{Rows: 50, Cols: 26, Cells: map[string]SpreadsheetCell{}}
	default:
		return ""
	}
	data, _ := json.Marshal(v)
	return string(data)
}
