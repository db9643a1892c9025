package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/contacts/internal/contacts"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	svc     *contacts.Service
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListContacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := h.baseCfg.ListParams()
	params.Page = request.GetInt("page", 1)
	if l := request.GetInt("limit", 0); l > 0 {
		params.Limit = l
	}
	params.Search = request.GetString("search", "")
	params.FavouritesOnly = request.GetBool("favourites_only", false)

	entry, err := h.svc.ListEntry(ctx, params)
	if err != nil {
		if entry.HasData {
			// The last known page follows the error so callers can keep showing it.
			res := jsonResult(entry.Data)
			res.IsError = true
			res.Content = append([]mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("list failed, showing last known page: %v", err)),
			}, res.Content...)
			return res, nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(entry.Data), nil
}

func (h *toolHandler) handleGetContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := h.svc.GetContact(ctx, request.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return jsonResult(c), nil
}

func (h *toolHandler) handleCreateContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields := schema.ContactFields{
		Name:      request.GetString("name", ""),
		Email:     request.GetString("email", ""),
		Phone:     request.GetString("phone", ""),
		Address:   request.GetString("address", ""),
		Favourite: request.GetBool("favourite", false),
		Avatar:    request.GetString("avatar", ""),
	}
	c, err := h.svc.CreateContact(ctx, fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	return jsonResult(c), nil
}

func (h *toolHandler) handleUpdateContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	current, err := h.svc.GetContact(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}

	fields := current.Fields()
	fields.Name = request.GetString("name", fields.Name)
	fields.Email = request.GetString("email", fields.Email)
	fields.Phone = request.GetString("phone", fields.Phone)
	fields.Address = request.GetString("address", fields.Address)
	fields.Favourite = request.GetBool("favourite", fields.Favourite)
	fields.Avatar = request.GetString("avatar", fields.Avatar)

	c, err := h.svc.UpdateContact(ctx, id, fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	return jsonResult(c), nil
}

func (h *toolHandler) handleDeleteContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if err := h.svc.DeleteContact(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted contact %s", id)), nil
}

func (h *toolHandler) handleToggleFavourite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	current, err := h.svc.GetContact(ctx, request.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("toggle failed: %v", err)), nil
	}
	c, err := h.svc.ToggleFavourite(ctx, current)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("toggle failed: %v", err)), nil
	}
	return jsonResult(c), nil
}
