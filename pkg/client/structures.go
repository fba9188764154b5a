package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/turtacn/cdforge/pkg/errors"
	"github.com/turtacn/cdforge/pkg/types/structure"
)

// Type aliases keep callers to a single import.
type (
	GenerateResult = structure.GenerateResponse
	Session        = structure.Session
)

// Generate builds a structure from a canonical descriptor.
func (c *Client) Generate(ctx context.Context, descriptor string) (*GenerateResult, error) {
	if descriptor == "" {
		return nil, errors.InvalidParam("descriptor is required")
	}
	var resp structure.GenerateResponse
	if err := c.post(ctx, "/generar_estructura", structure.GenerateRequest{StringCanonico: descriptor}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DecodeImage returns the PNG bytes of a generation result.
func DecodeImage(r *GenerateResult) ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Imagen2D)
}

// Minimize minimizes pdb inside the workspace named by ref, which is a
// user_dir or a session id.  The minimized PDB text is returned.
func (c *Client) Minimize(ctx context.Context, pdb, ref string) (string, error) {
	if pdb == "" || ref == "" {
		return "", errors.New(errors.CodeMissingInput, errors.MsgMissingInput)
	}
	var resp structure.MinimizeResponse
	if err := c.post(ctx, "/minimizar_estructura", structure.MinimizeRequest{PDBData: pdb, UserDir: ref}, &resp); err != nil {
		return "", err
	}
	return resp.MinimizedPDB, nil
}

// GetSession fetches a session record.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errors.InvalidParam("session id is required")
	}
	var resp structure.SessionResponse
	if err := c.get(ctx, "/sesiones/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

// DeleteSession removes a session's directory and record.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return errors.InvalidParam("session id is required")
	}
	return c.delete(ctx, "/sesiones/"+url.PathEscape(id), nil)
}

// Health is the liveness report.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/healthz", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Readiness is the readiness report with per-component checks.
type Readiness struct {
	Status     string `json:"status"`
	Components map[string]struct {
		Status  string `json:"status"`
		Latency string `json:"latency,omitempty"`
		Error   string `json:"error,omitempty"`
	} `json:"components,omitempty"`
}

// Ready calls GET /readyz.  A not-ready server yields the report together
// with the *APIError.
func (c *Client) Ready(ctx context.Context) (*Readiness, error) {
	var r Readiness
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &r)
	if err == nil {
		return &r, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		if json.Unmarshal(apiErr.body, &r) == nil && r.Status != "" {
			return &r, err
		}
	}
	return nil, err
}

//Personal.AI order the ending
