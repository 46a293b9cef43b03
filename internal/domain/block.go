package domain

import "time"

type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeTable   BlockType = "table"
	BlockTypeGallery BlockType = "gallery"
	BlockTypeFile    BlockType = "file"
	BlockTypeTask    BlockType = "task"
	BlockTypeSection BlockType = "section"
)

// MaxColumns is the number of horizontal slots a canvas row can hold.
const MaxColumns = 3

type Block struct {
	ID            string    `json:"id"`
	TabID         string    `json:"tabId"`
	ParentBlockID string    `json:"parentBlockId"` // non-empty only for blocks nested inside a section
	Type          BlockType `json:"type"`
	Content       string    `json:"content"` // type-dependent JSON payload, opaque to the canvas engine
	Position      float64   `json:"position"`
	Column        int       `json:"column"`
	FilePath      string    `json:"filePath"` // backing file for text/file blocks
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ValidBlockType reports whether t names a known block type.
func ValidBlockType(t BlockType) bool {
	switch t {
	case BlockTypeText, BlockTypeTable, BlockTypeGallery, BlockTypeFile, BlockTypeTask, BlockTypeSection:
		return true
	}
	return false
}

// Row returns the canvas row the block belongs to: floor(position), never negative.
func (b Block) Row() int {
	if b.Position < 0 {
		return 0
	}
	return int(b.Position)
}

// EffectiveColumn clamps the stored column into [0, MaxColumns).
// Out-of-range values are treated as column 0, not as an error.
func (b Block) EffectiveColumn() int {
	if b.Column < 0 || b.Column >= MaxColumns {
		return 0
	}
	return b.Column
}

// PositionPatch is a partial update of a block's canvas placement.
// Nil fields are left untouched by the store.
type PositionPatch struct {
	Position *float64 `json:"position,omitempty"`
	Column   *int     `json:"column,omitempty"`
}

type BlockStore interface {
	CreateBlock(b *Block) error
	GetBlock(id string) (*Block, error)
	// ListBlocks returns the blocks of one canvas scope: a tab's top-level
	// canvas (parentBlockID == "") or the inside of a section block.
	ListBlocks(tabID, parentBlockID string) ([]Block, error)
	UpdateBlock(b *Block) error
	// UpdateBlockPosition applies a placement patch. Idempotent: applying
	// the same patch twice yields the same stored state.
	UpdateBlockPosition(id string, patch PositionPatch) (*Block, error)
	DeleteBlock(id string) error
	DeleteBlocksByTab(tabID string) error
}
