// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/contacts/internal/contacts"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Contacts MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, svc *contacts.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Contacts Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		svc:     svc,
	}

	// --- 1. Tool: list_contacts ---
	s.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List one page of contacts, optionally filtered by a search string or to favourites only."),
		mcp.WithNumber("page", mcp.Description("1-based page number. Defaults to 1.")),
		mcp.WithNumber("limit", mcp.Description("Contacts per page. Defaults to the configured page size.")),
		mcp.WithString("search", mcp.Description("Case-insensitive substring to match.")),
		mcp.WithBoolean("favourites_only", mcp.Description("Only return favourite contacts.")),
	), h.handleListContacts)

	// --- 2. Tool: get_contact ---
	s.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Fetch a single contact by id."),
		mcp.WithString("id", mcp.Description("Contact id."), mcp.Required()),
	), h.handleGetContact)

	// --- 3. Tool: create_contact ---
	s.AddTool(mcp.NewTool("create_contact",
		mcp.WithDescription("Create a contact. The store assigns its id."),
		mcp.WithString("name", mcp.Description("Full name."), mcp.Required()),
		mcp.WithString("email", mcp.Description("Email address."), mcp.Required()),
		mcp.WithString("phone", mcp.Description("Phone number: digits, spaces, dashes, plus and parentheses."), mcp.Required()),
		mcp.WithString("address", mcp.Description("Postal address."), mcp.Required()),
		mcp.WithBoolean("favourite", mcp.Description("Mark as favourite.")),
		mcp.WithString("avatar", mcp.Description("Optional image URL.")),
	), h.handleCreateContact)

	// --- 4. Tool: update_contact ---
	s.AddTool(mcp.NewTool("update_contact",
		mcp.WithDescription("Change fields of an existing contact. Omitted fields keep their current value."),
		mcp.WithString("id", mcp.Description("Contact id."), mcp.Required()),
		mcp.WithString("name", mcp.Description("Full name.")),
		mcp.WithString("email", mcp.Description("Email address.")),
		mcp.WithString("phone", mcp.Description("Phone number.")),
		mcp.WithString("address", mcp.Description("Postal address.")),
		mcp.WithBoolean("favourite", mcp.Description("Favourite flag.")),
		mcp.WithString("avatar", mcp.Description("Image URL.")),
	), h.handleUpdateContact)

	// --- 5. Tool: delete_contact ---
	s.AddTool(mcp.NewTool("delete_contact",
		mcp.WithDescription("Delete a contact by id."),
		mcp.WithString("id", mcp.Description("Contact id."), mcp.Required()),
	), h.handleDeleteContact)

	// --- 6. Tool: toggle_favourite ---
	s.AddTool(mcp.NewTool("toggle_favourite",
		mcp.WithDescription("Flip the favourite flag of a contact."),
		mcp.WithString("id", mcp.Description("Contact id."), mcp.Required()),
	), h.handleToggleFavourite)

	return s
}

// StartMCPServer starts the Contacts MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, svc *contacts.Service, version string) error {
	s := NewMCPServer(baseCfg, svc, version)
	return server.ServeStdio(s)
}
