package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "spendr.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPlanRoundTrip(t *testing.T) {
	db := openTestDB(t)

	plan := &Plan{
		Industry:    "Ecommerce",
		Audience:    "GenZ",
		TotalBudget: 1000,
		AOV:         150,
		Kind:        "allocate",
		TopChannel:  "GoogleAds",
	}
	require.NoError(t, plan.SetPayload(map[string]any{"top": "GoogleAds"}))
	require.NoError(t, db.SavePlan(plan))
	assert.NotEmpty(t, plan.PublicID)

	got, err := db.GetPlan(plan.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "GenZ", got.Audience)

	var payload map[string]string
	require.NoError(t, got.Payload(&payload))
	assert.Equal(t, "GoogleAds", payload["top"])

	_, err = db.GetPlan("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPlansFilters(t *testing.T) {
	db := openTestDB(t)
	for _, p := range []Plan{
		{Industry: "Ecommerce", Audience: "GenZ", TotalBudget: 500, Kind: "allocate"},
		{Industry: "Travel", Audience: "Travelers", TotalBudget: 2000, Kind: "compare"},
		{Industry: "Ecommerce", Audience: "Millennials", TotalBudget: 1500, Kind: "allocate"},
	} {
		require.NoError(t, db.SavePlan(&p))
	}

	rows, total, err := db.ListPlans(PlanQuery{Industry: "ecommerce"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, _, err = db.ListPlans(PlanQuery{Sort: "budget_desc", Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2000.0, rows[0].TotalBudget)

	rows, total, err = db.ListPlans(PlanQuery{Kind: "compare"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Travel", rows[0].Industry)
}

func TestSaveAdEvaluationUpserts(t *testing.T) {
	db := openTestDB(t)

	first := &AdEvaluation{Text: "We sell clothes.", Total: 43.2, Band: "Average"}
	first.SetSuggestions([]string{"Add more details."})
	require.NoError(t, db.SaveAdEvaluation(first))
	id := first.PublicID

	again := &AdEvaluation{Text: "  we sell clothes. ", Total: 50, Band: "Average"}
	again.SetSuggestions(nil)
	require.NoError(t, db.SaveAdEvaluation(again))
	assert.Equal(t, id, again.PublicID)
	assert.Equal(t, 50.0, again.Total)
	assert.Empty(t, again.Suggestions())

	_, evaluations, err := db.Counts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, evaluations)

	got, err := db.GetAdEvaluation(id)
	require.NoError(t, err)
	assert.Equal(t, "We sell clothes.", got.Text)
}

func TestListAdEvaluations(t *testing.T) {
	db := openTestDB(t)
	for _, e := range []AdEvaluation{
		{Text: "Shop linen shirts today", Total: 70, Band: "Good"},
		{Text: "We sell clothes.", Total: 43.2, Band: "Average"},
		{Text: "Buy linen now", Total: 82, Band: "Excellent"},
	} {
		require.NoError(t, db.SaveAdEvaluation(&e))
	}

	rows, total, err := db.ListAdEvaluations(EvaluationQuery{Query: "linen", Sort: "total_desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Buy linen now", rows[0].Text)

	rows, _, err = db.ListAdEvaluations(EvaluationQuery{MinTotal: 60, Band: "good"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Good", rows[0].Band)

	require.NoError(t, db.ClearHistory())
	plans, evaluations, err := db.Counts()
	require.NoError(t, err)
	assert.Zero(t, plans)
	assert.Zero(t, evaluations)
}
