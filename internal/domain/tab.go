package domain

import "time"

// Tab is a page of blocks inside a project. Tabs nest one level at a time
// via ParentTabID; an empty ParentTabID marks a root tab.
type Tab struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	ParentTabID string    `json:"parentTabId"`
	Name        string    `json:"name"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TabStore interface {
	CreateTab(t *Tab) error
	GetTab(id string) (*Tab, error)
	ListTabs(projectID string) ([]Tab, error)
	ListChildTabs(parentTabID string) ([]Tab, error)
	UpdateTab(t *Tab) error
	DeleteTab(id string) error
}

// TabState is the complete state of a tab for rendering: the tab itself
// plus its top-level canvas blocks. Returned to the frontend as one unit.
type TabState struct {
	Tab    Tab     `json:"tab"`
	Blocks []Block `json:"blocks"`
}
