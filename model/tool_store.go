package model

import (
	"context"

	"github.com/Laisky/errors/v2"
)

// CreateTool validates fields and inserts a new tool, returning the stored row.
func CreateTool(ctx context.Context, store Store, fields ToolFields) (*Tool, error) {
	tool, err := NewTool(fields)
	if err != nil {
		return nil, err
	}
	created, err := store.InsertTool(ctx, &tool.ToolFields)
	if err != nil {
		return nil, newStoreError("insert tool", err)
	}
	return created, nil
}

// GetTool fetches a tool by its path identifier.
// Identifiers that can never exist yield ErrNotFound.
func GetTool(ctx context.Context, store Store, rawID string) (*Tool, error) {
	if rawID == "" {
		return nil, &ValidationError{Field: "id", Kind: ValidationMissing, Message: "Tool ID is required"}
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, ErrNotFound
	}
	tool, err := store.GetTool(ctx, id)
	if err != nil {
		return nil, newStoreError("get tool", err)
	}
	return tool, nil
}

// ListTools returns every tool.
func ListTools(ctx context.Context, store Store) ([]*Tool, error) {
	tools, err := store.ListTools(ctx)
	if err != nil {
		return nil, newStoreError("list tools", err)
	}
	if tools == nil {
		tools = []*Tool{}
	}
	return tools, nil
}

// UpdateTool merges patch into the stored tool and writes the validated result.
func UpdateTool(ctx context.Context, store Store, rawID string, patch *ToolPatch) (*Tool, error) {
	tool, err := GetTool(ctx, store, rawID)
	if err != nil {
		return nil, err
	}
	if err = tool.Apply(patch); err != nil {
		return nil, err
	}
	if err = store.UpdateTool(ctx, tool); err != nil {
		return nil, newStoreError("update tool", err)
	}
	return tool, nil
}

// DeleteTool removes a tool. Deleting an absent tool succeeds.
func DeleteTool(ctx context.Context, store Store, rawID string) error {
	if rawID == "" {
		return &ValidationError{Field: "id", Kind: ValidationMissing, Message: "Tool ID is required"}
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil
	}
	if err = store.DeleteTool(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return newStoreError("delete tool", err)
	}
	return nil
}
