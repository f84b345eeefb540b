// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz editorial tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/draftservice"
	"github.com/starford/dagaz/internal/feed"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/rank"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/store"
	"github.com/starford/dagaz/internal/tags"
)

// timelineGenerator is the slice of the generation pipeline the MCP
// tools need.
type timelineGenerator interface {
	Generate(ctx context.Context, title, overview string) []model.GeneratedEvent
}

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp       *server.MCPServer
	drafts    *draftservice.Service
	generator timelineGenerator
	searcher  feed.Searcher
	media     storage.Provider
}

// New creates a new MCP server with all Dagaz tools registered.
func New(drafts *draftservice.Service, generator timelineGenerator, searcher feed.Searcher, media storage.Provider) *Server {
	s := &Server{drafts: drafts, generator: generator, searcher: searcher, media: media}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_drafts",
		mcp.WithDescription("List draft records, optionally filtered by workflow status."),
		mcp.WithString("status", mcp.Description("Optional status filter: draft, review or published")),
	), s.listDrafts)

	s.mcp.AddTool(mcp.NewTool("read_draft",
		mcp.WithDescription("Read the full JSON document of a draft, including its timeline blocks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft identifier")),
	), s.readDraft)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create a new draft record. Read the get_draft_contract tool or the "+
			"dagaz://draft-format resource first to understand the document shape."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Draft title")),
		mcp.WithString("overview", mcp.Description("Short overview paragraph")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; normalized to kebab-case")),
	), s.createDraft)

	s.mcp.AddTool(mcp.NewTool("append_event",
		mcp.WithDescription("Append a timeline event to a draft."),
		mcp.WithString("draft_id", mcp.Required(), mcp.Description("Draft identifier")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event headline")),
		mcp.WithString("description", mcp.Description("Event description")),
		mcp.WithString("date", mcp.Description("Event date (YYYY-MM-DD)")),
		mcp.WithString("significance", mcp.Description("Significance 1-3 (defaults to 2)")),
	), s.appendEvent)

	s.mcp.AddTool(mcp.NewTool("generate_timeline",
		mcp.WithDescription("Generate timeline events for a topic. Returns an empty list when "+
			"generation is unavailable."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Topic title")),
		mcp.WithString("overview", mcp.Description("Topic overview")),
	), s.generateTimeline)

	s.mcp.AddTool(mcp.NewTool("find_source",
		mcp.WithDescription("Find the best-matching news source and preview image for a timeline event."),
		mcp.WithString("event_text", mcp.Required(), mcp.Description("Event headline to match against")),
		mcp.WithString("description", mcp.Description("Optional event description for better matching")),
	), s.findSource)

	s.mcp.AddTool(mcp.NewTool("get_draft_contract",
		mcp.WithDescription("Returns the canonical Dagaz draft document contract. "+
			"Call this before creating or editing drafts to ensure correct structure."),
	), s.getDraftContract)

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Upload a media file from an HTTP(S) URL or base64 data URI into the "+
			"media store. Returns the /media/ URL to use in image blocks."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or data: URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadMedia)

	// Resource: draft document contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://draft-format", "Draft Document Contract",
			mcp.WithResourceDescription("Canonical JSON document shape for Dagaz drafts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDraftFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := ""
	if v, err := req.RequireString("status"); err == nil {
		status = v
	}
	items, _, err := s.drafts.List(ctx, store.ListQuery{Status: status})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(d, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overview := ""
	if v, oErr := req.RequireString("overview"); oErr == nil {
		overview = v
	}
	var tagList []string
	if v, tErr := req.RequireString("tags"); tErr == nil && v != "" {
		for _, raw := range strings.Split(v, ",") {
			if n := tags.Normalize(raw); n != "" {
				tagList = append(tagList, n)
			}
		}
	}

	d, err := s.drafts.Create(ctx, draftservice.CreateParams{
		Title:    title,
		Overview: overview,
		Tags:     tagList,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.ID)), nil
}

func (s *Server) appendEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID, err := req.RequireString("draft_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	event, err := req.RequireString("event")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	legacy := model.LegacyEvent{Event: event, Significance: 2}
	if v, dErr := req.RequireString("description"); dErr == nil {
		legacy.Description = v
	}
	if v, dErr := req.RequireString("date"); dErr == nil && v != "" {
		legacy.Date = &v
	}
	if v, sErr := req.RequireString("significance"); sErr == nil && v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid significance: %s", v)), nil
		}
		legacy.Significance = n
	}

	d, err := s.drafts.AppendEvent(ctx, draftID, legacy)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("appended event to %s (%d blocks)", d.ID, len(d.Timeline))), nil
}

func (s *Server) generateTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overview := ""
	if v, oErr := req.RequireString("overview"); oErr == nil {
		overview = v
	}
	events := s.generator.Generate(ctx, title, overview)
	out, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventText, err := req.RequireString("event_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := ""
	if v, dErr := req.RequireString("description"); dErr == nil {
		description = v
	}

	candidates, err := s.searcher.Search(ctx, eventText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("source search failed: %v", err)), nil
	}
	res := rank.Rank(eventText, description, candidates)
	if res.SourceLink == "" {
		return mcp.NewToolResultText("no matching source found"), nil
	}
	out, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDraftContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DraftFormatContract), nil
}

func (s *Server) readDraftFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://draft-format",
			MIMEType: "text/markdown",
			Text:     DraftFormatContract,
		},
	}, nil
}
