// Package structure holds the JSON wire types of the cdforge HTTP API.
// Field names are part of the public contract and must not change.
package structure

import "time"

// GenerateRequest is the body of POST /generar_estructura.
type GenerateRequest struct {
	StringCanonico string `json:"string_canonico"`
}

// GenerateResponse is the success body of POST /generar_estructura.
// PDBNoH and PDBH carry the same unminimized structure.
type GenerateResponse struct {
	Success        bool       `json:"success"`
	SMILES         string     `json:"smiles"`
	Imagen2D       string     `json:"imagen_2d"`
	PDBNoH         string     `json:"pdb_noH"`
	PDBH           string     `json:"pdb_H"`
	Mensaje        string     `json:"mensaje"`
	UserDir        string     `json:"user_dir"`
	SessionID      string     `json:"session_id"`
	SMILESUnidades []string   `json:"smiles_unidades"`
	Artifacts      []Artifact `json:"artifacts,omitempty"`
}

// Artifact is an archived copy of a workspace file.
type Artifact struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size"`
}

// MinimizeRequest is the body of POST /minimizar_estructura.  SessionID may
// be sent instead of UserDir.
type MinimizeRequest struct {
	PDBData   string `json:"pdb_data"`
	UserDir   string `json:"user_dir"`
	SessionID string `json:"session_id,omitempty"`
}

// Ref returns the workspace reference carried by the request.
func (r MinimizeRequest) Ref() string {
	if r.UserDir != "" {
		return r.UserDir
	}
	return r.SessionID
}

// MinimizeResponse is the success body of POST /minimizar_estructura.
type MinimizeResponse struct {
	Success      bool   `json:"success"`
	MinimizedPDB string `json:"minimized_pdb"`
}

// ErrorResponse is the failure envelope of every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Session is the public view of a session record.
type Session struct {
	ID        string    `json:"id"`
	UserDir   string    `json:"user_dir"`
	Units     int       `json:"units"`
	Status    string    `json:"status"`
	SMILES    string    `json:"smiles,omitempty"`
	Error     string    `json:"error,omitempty"`
	Artifacts []string  `json:"artifacts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionResponse wraps a session record.
type SessionResponse struct {
	Success bool    `json:"success"`
	Session Session `json:"session"`
}

// DeleteResponse acknowledges DELETE /sesiones/:id.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Deleted string `json:"deleted"`
}

//Personal.AI order the ending
