package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
)

// Handlers implements the sappy MCP tools on top of an engine.Service.
type Handlers struct {
	svc *engine.Service
	log *slog.Logger
}

type companionView struct {
	ID       string          `json:"id"`
	Palette  string          `json:"palette"`
	Charge   int             `json:"charge"`
	Petals   int             `json:"petals"`
	CanBloom bool            `json:"can_bloom"`
	Traits   storage.JSONMap `json:"traits"`
	Equipped []string        `json:"equipped_item_ids"`
}

func viewCompanion(c storage.Companion) companionView {
	return companionView{
		ID:       c.ID,
		Palette:  c.PaletteID,
		Charge:   c.Charge,
		Petals:   c.PetalsBalance,
		CanBloom: c.Charge >= engine.BloomThreshold,
		Traits:   c.Traits,
		Equipped: c.EquippedItemIDs,
	}
}

type questView struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Progress int    `json:"progress"`
	Target   int    `json:"target"`
	Reward   int    `json:"reward_petals"`
	Complete bool   `json:"complete"`
	Claimed  bool   `json:"claimed"`
}

func viewQuests(qs []storage.Quest) []questView {
	out := make([]questView, 0, len(qs))
	for _, q := range qs {
		out = append(out, questView{
			ID:       q.ID,
			Type:     q.QuestType,
			Title:    engine.QuestTitle(q.QuestType),
			Progress: q.Progress,
			Target:   q.Target,
			Reward:   q.RewardPetals,
			Complete: q.Complete(),
			Claimed:  q.IsClaimed,
		})
	}
	return out
}

type goalView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Schedule string `json:"schedule"`
	Done     bool   `json:"done"`
}

func viewGoals(goals []engine.DueGoal) []goalView {
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalView{
			ID:       g.Goal.ID,
			Title:    g.Goal.Title,
			Schedule: engine.DescribeSchedule(g.Goal.Schedule),
			Done:     g.Done,
		})
	}
	return out
}

// Status handles the status tool.
func (h *Handlers) Status(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := request.GetString("date", "")
	if _, err := h.svc.EnsureDailyQuests(ctx, date); err != nil {
		return h.fail("status", err), nil
	}
	st, err := h.svc.Status(ctx, date)
	if err != nil {
		return h.fail("status", err), nil
	}
	return jsonResult(map[string]interface{}{
		"date":       st.Date,
		"companion":  viewCompanion(st.Companion),
		"quests":     viewQuests(st.Quests),
		"goals":      viewGoals(st.Goals),
		"pause_mode": st.Settings.PauseMode,
	})
}

// Checkin handles the checkin tool.
func (h *Handlers) Checkin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mood := request.GetInt("mood", 0)
	if mood == 0 {
		return mcp.NewToolResultError("mood argument is required and must be a number from 1 to 5"), nil
	}
	date := request.GetString("date", "")
	if _, err := h.svc.EnsureDailyQuests(ctx, ""); err != nil {
		return h.fail("checkin", err), nil
	}
	c, err := h.svc.RecordCheckin(ctx, storage.CheckinInput{
		LocalDate: date,
		Mood:      mood,
		Note:      optionalString(request, "note"),
	})
	if err != nil {
		return h.fail("checkin", err), nil
	}
	return h.withCompanion(ctx, map[string]interface{}{
		"checkin_id": c.ID,
		"date":       c.LocalDate,
		"mood":       c.Mood,
	})
}

// CompleteGoal handles the complete_goal tool.
func (h *Handlers) CompleteGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goal_id")
	if err != nil {
		return mcp.NewToolResultError("goal_id argument is required and must be a string"), nil
	}
	if _, err := h.svc.EnsureDailyQuests(ctx, ""); err != nil {
		return h.fail("complete goal", err), nil
	}
	res, err := h.svc.CompleteGoalByID(ctx, goalID, request.GetString("date", ""))
	if err != nil {
		return h.fail("complete goal", err), nil
	}
	return h.withCompanion(ctx, map[string]interface{}{
		"completion_id":     res.Completion.ID,
		"date":              res.Completion.LocalDate,
		"already_completed": !res.Created,
		"charge_earned":     res.Reward.ChargeDelta,
		"petals_earned":     res.Reward.PetalsDelta,
	})
}

// RecordActivity handles the record_activity tool.
func (h *Handlers) RecordActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := request.RequireString("activity_type")
	if err != nil {
		return mcp.NewToolResultError("activity_type argument is required and must be a string"), nil
	}
	in := storage.ActivitySessionInput{
		LocalDate:    request.GetString("date", ""),
		ActivityType: storage.ActivityType(kind),
		Note:         optionalString(request, "note"),
		Metadata:     storage.JSONMap{"source": "mcp"},
	}
	if d := request.GetInt("duration_seconds", -1); d >= 0 {
		in.DurationSeconds = &d
	}
	if _, err := h.svc.EnsureDailyQuests(ctx, ""); err != nil {
		return h.fail("record activity", err), nil
	}
	sess, err := h.svc.RecordActivity(ctx, in)
	if err != nil {
		return h.fail("record activity", err), nil
	}
	return h.withCompanion(ctx, map[string]interface{}{
		"session_id":    sess.ID,
		"activity_type": sess.ActivityType,
		"date":          sess.LocalDate,
	})
}

// ListQuests handles the list_quests tool.
func (h *Handlers) ListQuests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	quests, err := h.svc.EnsureDailyQuests(ctx, request.GetString("date", ""))
	if err != nil {
		return h.fail("list quests", err), nil
	}
	return jsonResult(map[string]interface{}{"quests": viewQuests(quests)})
}

// ClaimQuest handles the claim_quest tool.
func (h *Handlers) ClaimQuest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	questID, err := request.RequireString("quest_id")
	if err != nil {
		return mcp.NewToolResultError("quest_id argument is required and must be a string"), nil
	}
	q, err := h.svc.ClaimQuest(ctx, questID)
	if err != nil {
		return h.fail("claim quest", err), nil
	}
	return h.withCompanion(ctx, map[string]interface{}{"quest": viewQuests([]storage.Quest{*q})[0]})
}

// PurchaseItem handles the purchase_item tool.
func (h *Handlers) PurchaseItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	res, err := h.svc.PurchaseItem(ctx, itemID)
	if err != nil {
		return h.fail("purchase", err), nil
	}
	return jsonResult(map[string]interface{}{
		"item_id":       res.UserItem.ItemID,
		"already_owned": res.AlreadyOwned,
		"companion":     viewCompanion(res.Companion),
	})
}

// StartBloom handles the start_bloom tool.
func (h *Handlers) StartBloom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := h.svc.StartBloom(ctx, request.GetString("date", ""))
	if err != nil {
		return h.fail("start bloom", err), nil
	}
	return jsonResult(map[string]interface{}{
		"bloom_run_id":      start.Run.ID,
		"story_instance_id": start.Instance.ID,
		"card": map[string]interface{}{
			"id":       start.Card.ID,
			"title":    start.Card.Title,
			"body":     start.Card.Body,
			"choice_a": start.Card.ChoiceAText,
			"choice_b": start.Card.ChoiceBText,
		},
	})
}

// CompleteBloom handles the complete_bloom tool.
func (h *Handlers) CompleteBloom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("bloom_run_id")
	if err != nil {
		return mcp.NewToolResultError("bloom_run_id argument is required and must be a string"), nil
	}
	instanceID, err := request.RequireString("story_instance_id")
	if err != nil {
		return mcp.NewToolResultError("story_instance_id argument is required and must be a string"), nil
	}
	choice, err := request.RequireString("choice")
	if err != nil {
		return mcp.NewToolResultError("choice argument is required and must be \"a\" or \"b\""), nil
	}
	if _, err := h.svc.EnsureDailyQuests(ctx, ""); err != nil {
		return h.fail("complete bloom", err), nil
	}
	res, err := h.svc.CompleteBloom(ctx, engine.CompleteBloomInput{
		BloomRunID:      runID,
		StoryInstanceID: instanceID,
		Choice:          storage.Choice(choice),
		ReflectionText:  optionalString(request, "reflection"),
	})
	if err != nil {
		return h.fail("complete bloom", err), nil
	}
	return jsonResult(map[string]interface{}{
		"petals_awarded":  res.PetalsAwarded,
		"sticker_item_id": res.StickerItemID,
		"companion":       viewCompanion(res.Companion),
	})
}

// DueGoals handles the due_goals tool.
func (h *Handlers) DueGoals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := h.svc.TodayGoals(ctx, request.GetString("date", ""))
	if err != nil {
		return h.fail("due goals", err), nil
	}
	return jsonResult(map[string]interface{}{"goals": viewGoals(goals)})
}

// ReceiveSupportNote handles the receive_support_note tool.
func (h *Handlers) ReceiveSupportNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	friendID, err := request.RequireString("friend_id")
	if err != nil {
		return mcp.NewToolResultError("friend_id argument is required and must be a string"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	note, err := h.svc.ReceiveSupportNote(ctx, friendID, message)
	if err != nil {
		return h.fail("receive note", err), nil
	}
	return jsonResult(map[string]interface{}{
		"note_id":    note.ID,
		"created_at": note.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handlers) withCompanion(ctx context.Context, body map[string]interface{}) (*mcp.CallToolResult, error) {
	c, err := h.svc.Companion(ctx)
	if err != nil {
		return h.fail("companion", err), nil
	}
	body["companion"] = viewCompanion(*c)
	return jsonResult(body)
}

// fail turns an engine error into a tool error. Rule violations are reported
// to the caller as-is; anything else is logged as well.
func (h *Handlers) fail(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInsufficientCharge),
		errors.Is(err, engine.ErrBloomAlreadyCompleted),
		errors.Is(err, engine.ErrNoStoryCards),
		errors.Is(err, engine.ErrUnsupported):
	default:
		h.log.Error("tool failed", "op", op, "err", err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func optionalString(request mcp.CallToolRequest, key string) *string {
	v := request.GetString(key, "")
	if v == "" {
		return nil
	}
	return &v
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
