package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/catalog"
	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
)

func newTestHandlers(t *testing.T) (*Handlers, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	store := filestore.OpenMemory()
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, cat.Seed(ctx, store.Repos().Shop))

	clock := engine.NewFakeClock(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	svc := engine.NewService(store, engine.WithClock(clock), engine.WithStickerDropRate(0))
	_, err = svc.Onboard(ctx, "")
	require.NoError(t, err)

	_, h := NewServer(svc, nil)
	return h, svc
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, "tool error: %s", text(t, res))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestCheckinAndClaim(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t)

	res, err := h.Checkin(ctx, call(map[string]any{"mood": float64(4), "note": "sunny"}))
	require.NoError(t, err)
	body := decode(t, res)
	companion := body["companion"].(map[string]any)
	assert.Equal(t, float64(10), companion["charge"])
	assert.Equal(t, float64(2), companion["petals"])

	res, err = h.ListQuests(ctx, call(nil))
	require.NoError(t, err)
	quests := decode(t, res)["quests"].([]any)
	require.Len(t, quests, 3)

	var questID string
	for _, q := range quests {
		q := q.(map[string]any)
		if q["type"] == engine.QuestCheckin1 {
			questID = q["id"].(string)
			assert.Equal(t, true, q["complete"])
		}
	}
	require.NotEmpty(t, questID)

	res, err = h.ClaimQuest(ctx, call(map[string]any{"quest_id": questID}))
	require.NoError(t, err)
	body = decode(t, res)
	assert.Equal(t, float64(12), body["companion"].(map[string]any)["petals"])
}

func TestToolErrors(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t)

	res, err := h.Checkin(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.Checkin(ctx, call(map[string]any{"mood": float64(9)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "mood")

	res, err = h.PurchaseItem(ctx, call(map[string]any{"item_id": "item_outfit_sunhat"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not enough petals")

	res, err = h.StartBloom(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.ClaimQuest(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCompleteGoalTool(t *testing.T) {
	ctx := context.Background()
	h, svc := newTestHandlers(t)
	g, err := svc.CreateGoal(ctx, "Stretch", nil, nil)
	require.NoError(t, err)

	res, err := h.CompleteGoal(ctx, call(map[string]any{"goal_id": g.ID}))
	require.NoError(t, err)
	body := decode(t, res)
	assert.Equal(t, false, body["already_completed"])
	assert.Equal(t, float64(3), body["petals_earned"])

	res, err = h.CompleteGoal(ctx, call(map[string]any{"goal_id": g.ID}))
	require.NoError(t, err)
	body = decode(t, res)
	assert.Equal(t, true, body["already_completed"])

	res, err = h.DueGoals(ctx, call(nil))
	require.NoError(t, err)
	goals := decode(t, res)["goals"].([]any)
	require.Len(t, goals, 1)
	assert.Equal(t, true, goals[0].(map[string]any)["done"])
}

func TestBloomTools(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t)
	for range 5 {
		res, err := h.RecordActivity(ctx, call(map[string]any{"activity_type": "breathe", "duration_seconds": float64(60)}))
		require.NoError(t, err)
		decode(t, res)
	}
	for range 3 {
		res, err := h.Checkin(ctx, call(map[string]any{"mood": float64(3)}))
		require.NoError(t, err)
		decode(t, res)
	}

	res, err := h.StartBloom(ctx, call(nil))
	require.NoError(t, err)
	start := decode(t, res)
	require.NotEmpty(t, start["bloom_run_id"])

	res, err = h.CompleteBloom(ctx, call(map[string]any{
		"bloom_run_id":      start["bloom_run_id"],
		"story_instance_id": start["story_instance_id"],
		"choice":            "b",
	}))
	require.NoError(t, err)
	body := decode(t, res)
	assert.Equal(t, float64(12), body["petals_awarded"])
	assert.Equal(t, "", body["sticker_item_id"])
	assert.Equal(t, float64(0), body["companion"].(map[string]any)["charge"])
}

func TestStatusTool(t *testing.T) {
	h, _ := newTestHandlers(t)
	res, err := h.Status(context.Background(), call(nil))
	require.NoError(t, err)
	body := decode(t, res)
	assert.Equal(t, "2025-01-06", body["date"])
	assert.Len(t, body["quests"].([]any), 3)
	assert.Equal(t, false, body["pause_mode"])
}
