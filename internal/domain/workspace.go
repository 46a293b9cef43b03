package domain

import "time"

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Project struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type WorkspaceStore interface {
	CreateWorkspace(w *Workspace) error
	GetWorkspace(id string) (*Workspace, error)
	ListWorkspaces() ([]Workspace, error)
	UpdateWorkspace(w *Workspace) error
	DeleteWorkspace(id string) error

	CreateProject(p *Project) error
	GetProject(id string) (*Project, error)
	ListProjects(workspaceID string) ([]Project, error)
	UpdateProject(p *Project) error
	DeleteProject(id string) error
}
