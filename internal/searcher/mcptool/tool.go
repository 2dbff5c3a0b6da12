// Package mcptool exposes the search engine as the search_abstracts MCP
// tool.
package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
)

const ToolName = "search_abstracts"

// SearchArgument is the tool input.
type SearchArgument struct {
	Query     string `json:"query,omitempty" jsonschema:"free-text query over titles and abstracts"`
	Authors   string `json:"authors,omitempty" jsonschema:"comma-separated author names; every name must match"`
	Published string `json:"published,omitempty" jsonschema:"inclusive ISO date range from,to; either side may be empty"`
}

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, req engine.Request) (*engine.Response, error)
}

type SearchHandler struct {
	searcher Searcher
}

func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// Handle runs the search and renders the hits as markdown. Search failures
// are reported as tool errors, not protocol errors.
func (h *SearchHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	req := engine.Request{
		Query:  args.Query,
		Names:  engine.ParseNames(args.Authors),
		Period: args.Published,
	}
	if strings.TrimSpace(req.Query) == "" && len(req.Names) == 0 && strings.TrimSpace(req.Period) == "" {
		return errorResult("Provide a query, authors or a published range."), nil, nil
	}
	resp, err := h.searcher.Search(ctx, req)
	if err != nil {
		return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: Format(resp)}},
	}, nil, nil
}

// Format renders a response as markdown, one section per hit.
func Format(resp *engine.Response) string {
	if len(resp.Results) == 0 {
		return "No matching abstracts."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d abstracts (%s), showing %d.\n\n", resp.Total, resp.Variant, len(resp.Results))
	for i, r := range resp.Results {
		s := r.Summary
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, s.Title)
		fmt.Fprintf(&sb, "**id**: %s  **idoc**: %d  **score**: %.4f\n", s.ID, s.IDoc, r.Score)
		if len(s.Authors) > 0 {
			fmt.Fprintf(&sb, "**authors**: %s\n", strings.Join(s.Authors, ", "))
		}
		if s.Published != "" {
			fmt.Fprintf(&sb, "**published**: %s\n", s.Published)
		}
		sb.WriteString("\n")
		sb.WriteString(s.Summarized)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func (h *SearchHandler) ToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolName,
		Description: "Search scientific abstracts by free text, authors and publication period",
	}
}

// NewServer returns an MCP server with the search tool registered.
func NewServer(s Searcher, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "abstract-search", Version: version}, nil)
	h := NewSearchHandler(s)
	mcp.AddTool(server, h.ToolDefinition(), h.Handle)
	return server
}
