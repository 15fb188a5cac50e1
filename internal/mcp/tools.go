// Package mcp exposes the companion engine as MCP tools over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wabdoteth/sappy-care/internal/engine"
)

const (
	ServerName    = "sappy"
	ServerVersion = "0.1.0"
)

// NewServer builds an MCP server with every sappy tool registered.
func NewServer(svc *engine.Service, logger *slog.Logger) (*mcpserver.MCPServer, *Handlers) {
	server := mcpserver.NewMCPServer(ServerName, ServerVersion, mcpserver.WithToolCapabilities(false))
	return server, RegisterTools(server, svc, logger)
}

func dateProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Civil date YYYY-MM-DD (default: today)",
	}
}

// RegisterTools adds the sappy tools to server.
func RegisterTools(server *mcpserver.MCPServer, svc *engine.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handlers{svc: svc, log: logger}

	server.AddTool(mcp.Tool{
		Name:        "status",
		Description: "Show the companion's charge, petals, today's quests and due goals.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"date": dateProp()},
		},
	}, h.Status)

	server.AddTool(mcp.Tool{
		Name:        "checkin",
		Description: "Record a mood check-in (1-5). Earns 10 charge and 2 petals.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mood": map[string]interface{}{
					"type":        "number",
					"description": "Mood from 1 (low) to 5 (great)",
				},
				"note": map[string]interface{}{
					"type":        "string",
					"description": "Optional note, up to 280 characters",
				},
				"date": dateProp(),
			},
			Required: []string{"mood"},
		},
	}, h.Checkin)

	server.AddTool(mcp.Tool{
		Name:        "complete_goal",
		Description: "Mark a goal done for the day. Completing it again the same day earns nothing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"goal_id": map[string]interface{}{
					"type":        "string",
					"description": "Goal ID",
				},
				"date": dateProp(),
			},
			Required: []string{"goal_id"},
		},
	}, h.CompleteGoal)

	server.AddTool(mcp.Tool{
		Name:        "record_activity",
		Description: "Record a finished activity session. Earns 6 charge and 2 petals.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"activity_type": map[string]interface{}{
					"type":        "string",
					"description": "One of breathe, focus, sound, reflect, first_aid",
					"enum":        []string{"breathe", "focus", "sound", "reflect", "first_aid"},
				},
				"duration_seconds": map[string]interface{}{
					"type":        "number",
					"description": "Optional session length in seconds",
				},
				"note": map[string]interface{}{
					"type":        "string",
					"description": "Optional note, up to 280 characters",
				},
				"date": dateProp(),
			},
			Required: []string{"activity_type"},
		},
	}, h.RecordActivity)

	server.AddTool(mcp.Tool{
		Name:        "list_quests",
		Description: "List the daily quests with progress and claim state.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"date": dateProp()},
		},
	}, h.ListQuests)

	server.AddTool(mcp.Tool{
		Name:        "claim_quest",
		Description: "Claim a quest's 10 petal reward. Claiming twice pays once.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"quest_id": map[string]interface{}{
					"type":        "string",
					"description": "Quest ID from list_quests",
				},
			},
			Required: []string{"quest_id"},
		},
	}, h.ClaimQuest)

	server.AddTool(mcp.Tool{
		Name:        "purchase_item",
		Description: "Buy a shop item with petals.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "Item ID, e.g. item_outfit_sunhat",
				},
			},
			Required: []string{"item_id"},
		},
	}, h.PurchaseItem)

	server.AddTool(mcp.Tool{
		Name:        "start_bloom",
		Description: "Start a bloom when charge is at least 60. Returns the day's story card.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"date": dateProp()},
		},
	}, h.StartBloom)

	server.AddTool(mcp.Tool{
		Name:        "complete_bloom",
		Description: "Answer the bloom's story card. Spends all charge, earns 12 petals and maybe a sticker.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"bloom_run_id": map[string]interface{}{
					"type":        "string",
					"description": "Bloom run ID from start_bloom",
				},
				"story_instance_id": map[string]interface{}{
					"type":        "string",
					"description": "Story instance ID from start_bloom",
				},
				"choice": map[string]interface{}{
					"type":        "string",
					"description": "Story choice",
					"enum":        []string{"a", "b"},
				},
				"reflection": map[string]interface{}{
					"type":        "string",
					"description": "Optional reflection, up to 280 characters",
				},
			},
			Required: []string{"bloom_run_id", "story_instance_id", "choice"},
		},
	}, h.CompleteBloom)

	server.AddTool(mcp.Tool{
		Name:        "due_goals",
		Description: "List the goals due on a date and whether each is done.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"date": dateProp()},
		},
	}, h.DueGoals)

	server.AddTool(mcp.Tool{
		Name:        "receive_support_note",
		Description: "Store a support note that arrived from a friend.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"friend_id": map[string]interface{}{
					"type":        "string",
					"description": "Friend ID",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Note text, 1-280 characters",
				},
			},
			Required: []string{"friend_id", "message"},
		},
	}, h.ReceiveSupportNote)

	return h
}
