package root

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a private data dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	flags = globalFlags{}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dir, "--backend", "file"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{"SAPPY_CONFIG", "SAPPY_DATA_DIR", "SAPPY_BACKEND", "SAPPY_DB_PATH", "SAPPY_STORE_PATH", "SAPPY_LOG_LEVEL", "SAPPY_STICKER_DROP_RATE", "SAPPY_QUEST_CRON", "SAPPY_CATALOG"} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func TestOnboardAndStatus(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "onboard", "--palette", "mint")
	require.NoError(t, err)
	assert.Contains(t, out, "Kelp")

	out, err = run(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily quests")
	assert.Contains(t, out, "Check in once")
}

func TestCheckinAndHistory(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "onboard")
	require.NoError(t, err)

	_, err = run(t, dir, "checkin", "4", "--note", "sunny")
	require.NoError(t, err)

	out, err := run(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "checkin")
}

func TestCheckinRejectsNonNumericMood(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "checkin", "great")
	assert.ErrorContains(t, err, "mood must be an integer")
}

func TestCheckinNeedsCompanion(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "checkin", "3")
	assert.Error(t, err)
}

func TestGoalAddAndToday(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "onboard")
	require.NoError(t, err)

	out, err := run(t, dir, "goal", "add", "Stretch", "for", "5", "minutes")
	require.NoError(t, err)
	assert.Contains(t, out, "Stretch for 5 minutes")
	assert.Contains(t, out, "daily")

	out, err = run(t, dir, "goal", "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Stretch for 5 minutes")
}

func TestGoalAddRejectsBadDays(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "goal", "add", "Swim", "--days", "funday")
	assert.ErrorContains(t, err, "unknown weekday")
}

func TestShopListsCatalog(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "onboard")
	require.NoError(t, err)

	out, err := run(t, dir, "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Shop")
	assert.Contains(t, out, "petals")
}

func TestBloomStartNeedsCharge(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "onboard")
	require.NoError(t, err)

	_, err = run(t, dir, "bloom", "start")
	assert.Error(t, err)
}

func TestBloomCompleteWithoutPendingRun(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "onboard")
	require.NoError(t, err)

	_, err = run(t, dir, "bloom", "complete", "a")
	assert.ErrorContains(t, err, "no bloom in progress")
}

func TestPauseRejectsUnknownArg(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "pause", "maybe")
	assert.Error(t, err)
}

func TestResetRequiresConfirmation(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "reset")
	assert.ErrorContains(t, err, "--yes")

	_, err = run(t, dir, "onboard")
	require.NoError(t, err)
	out, err := run(t, dir, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
}

func TestFriendsCode(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, dir, "friends", "code")
	require.NoError(t, err)
	assert.Contains(t, out, "Your code")
}
