package pingone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Environment es el detalle del environment (test de conexión).
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema es una entrada del listado de schemas.
type Schema struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttributeRecord es un atributo tal como lo reporta la API. El core solo lo
// lee y referencia por ID dentro de una corrida; no es dueño del registro.
type AttributeRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Enabled     bool   `json:"enabled"`
	Unique      bool   `json:"unique,omitempty"`
	Multivalued bool   `json:"multivalued,omitempty"`
	SchemaID    string `json:"schemaId,omitempty"`
}

// Las respuestas de colección vienen en formato HAL (_embedded).
type schemasResponse struct {
	Embedded struct {
		Schemas []Schema `json:"schemas"`
	} `json:"_embedded"`
}

type attributesResponse struct {
	Embedded struct {
		Attributes []AttributeRecord `json:"attributes"`
	} `json:"_embedded"`
}

// GetEnvironment trae el detalle del environment.
func (c *Client) GetEnvironment(ctx context.Context, tok Token) (Environment, error) {
	path := fmt.Sprintf("/environments/%s", c.conn.EnvironmentID)
	_, body, err := c.Request(ctx, http.MethodGet, path, tok, nil)
	if err != nil {
		return Environment{}, err
	}
	var env Environment
	if err := json.Unmarshal(body, &env); err != nil {
		return Environment{}, &RequestError{Kind: ReqMalformedResponse, Method: http.MethodGet, Path: path, Message: "parsear environment", Err: err}
	}
	return env, nil
}

// UserSchemaID resuelve el ID del schema "User" del environment. Los
// atributos custom cuelgan de ese schema; el reconciler lo resuelve una vez
// por corrida.
func (c *Client) UserSchemaID(ctx context.Context, tok Token) (string, error) {
	path := fmt.Sprintf("/environments/%s/schemas", c.conn.EnvironmentID)
	_, body, err := c.Request(ctx, http.MethodGet, path, tok, nil)
	if err != nil {
		return "", err
	}
	var sr schemasResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", &RequestError{Kind: ReqMalformedResponse, Method: http.MethodGet, Path: path, Message: "parsear schemas", Err: err}
	}
	for _, s := range sr.Embedded.Schemas {
		if s.Name == "User" {
			return s.ID, nil
		}
	}
	return "", &RequestError{Kind: ReqNotFound, Method: http.MethodGet, Path: path, Message: "el environment no tiene schema User"}
}

// ListAttributes enumera los atributos del schema dado.
func (c *Client) ListAttributes(ctx context.Context, tok Token, schemaID string) ([]AttributeRecord, error) {
	path := fmt.Sprintf("/environments/%s/schemas/%s/attributes", c.conn.EnvironmentID, schemaID)
	_, body, err := c.Request(ctx, http.MethodGet, path, tok, nil)
	if err != nil {
		return nil, err
	}
	var ar attributesResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, &RequestError{Kind: ReqMalformedResponse, Method: http.MethodGet, Path: path, Message: "parsear attributes", Err: err}
	}
	return ar.Embedded.Attributes, nil
}

// CreateAttribute crea un atributo custom tipo STRING bajo el schema dado.
func (c *Client) CreateAttribute(ctx context.Context, tok Token, schemaID, name, description string) (AttributeRecord, error) {
	path := fmt.Sprintf("/environments/%s/schemas/attributes", c.conn.EnvironmentID)
	payload := AttributeRecord{
		Name:        name,
		DisplayName: name,
		Description: description,
		Type:        "STRING",
		Enabled:     true,
		Unique:      false,
		Multivalued: false,
		SchemaID:    schemaID,
	}
	_, body, err := c.Request(ctx, http.MethodPost, path, tok, payload)
	if err != nil {
		return AttributeRecord{}, err
	}
	var created AttributeRecord
	if err := json.Unmarshal(body, &created); err != nil {
		return AttributeRecord{}, &RequestError{Kind: ReqMalformedResponse, Method: http.MethodPost, Path: path, Message: "parsear atributo creado", Err: err}
	}
	return created, nil
}

// SetAttributeEnabled habilita/deshabilita un atributo (clear = enabled=false).
func (c *Client) SetAttributeEnabled(ctx context.Context, tok Token, attributeID string, enabled bool) error {
	path := fmt.Sprintf("/environments/%s/schemas/attributes/%s", c.conn.EnvironmentID, attributeID)
	payload := map[string]any{"enabled": enabled}
	_, _, err := c.Request(ctx, http.MethodPatch, path, tok, payload)
	return err
}

// DeleteAttribute borra un atributo por ID.
func (c *Client) DeleteAttribute(ctx context.Context, tok Token, attributeID string) error {
	path := fmt.Sprintf("/environments/%s/schemas/attributes/%s", c.conn.EnvironmentID, attributeID)
	_, _, err := c.Request(ctx, http.MethodDelete, path, tok, nil)
	return err
}

// CreateUser crea un usuario en el environment (usado por los flags ocultos).
func (c *Client) CreateUser(ctx context.Context, tok Token, user map[string]any) (map[string]any, error) {
	path := fmt.Sprintf("/environments/%s/users", c.conn.EnvironmentID)
	_, body, err := c.Request(ctx, http.MethodPost, path, tok, user)
	if err != nil {
		return nil, err
	}
	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &RequestError{Kind: ReqMalformedResponse, Method: http.MethodPost, Path: path, Message: "parsear usuario creado", Err: err}
	}
	return created, nil
}
