package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/db/memdb"
	"github.com/jonathan/series-publisher/internal/types"
)

type fakeDecomposer struct {
	topics []types.TopicSpec
	err    error
	calls  int
}

func (f *fakeDecomposer) Decompose(context.Context, string, string) ([]types.TopicSpec, error) {
	f.calls++
	return f.topics, f.err
}

func threeTopics() []types.TopicSpec {
	return []types.TopicSpec{
		{Title: "Make it obvious", Brief: "Cues.", Keywords: []string{"cues"}},
		{Title: "Make it attractive", Brief: "Craving.", Keywords: []string{"craving"}},
		{Title: "Make it easy", Brief: "Response.", Keywords: []string{"friction"}},
	}
}

func listTopics(t *testing.T, store db.Store, planID uuid.UUID) []db.Topic {
	t.Helper()
	var topics []db.Topic
	require.NoError(t, store.WithTx(context.Background(), func(tx db.Tx) error {
		var err error
		topics, err = tx.ListTopics(context.Background(), planID)
		return err
	}))
	return topics
}

func TestCreatePlan_PersistsPlanAndTopics(t *testing.T) {
	store := memdb.New()
	p := New(store, &fakeDecomposer{topics: threeTopics()}, nil)
	ctx := context.Background()

	planID, err := p.CreatePlan(ctx, "Atomic Habits", "")
	require.NoError(t, err)

	require.NoError(t, store.WithTx(ctx, func(tx db.Tx) error {
		plan, err := tx.GetPlan(ctx, planID)
		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.Equal(t, 3, plan.TotalTopicCount)
		assert.Equal(t, 0, plan.CompletedTopicCount)
		assert.Equal(t, "book", plan.ResourceKind)
		assert.Equal(t, "Atomic Habits content outline", plan.Description)
		return nil
	}))

	topics := listTopics(t, store, planID)
	require.Len(t, topics, 3)
	for i, tp := range topics {
		assert.Equal(t, i+1, tp.Position)
		assert.Equal(t, db.TopicStatusPending, tp.Status)
	}
	assert.Equal(t, []string{"friction"}, topics[2].Keywords)
}

func TestCreatePlan_PlanningErrors(t *testing.T) {
	tests := []struct {
		name       string
		resource   string
		decomposer *fakeDecomposer
	}{
		{name: "empty name", resource: "", decomposer: &fakeDecomposer{topics: threeTopics()}},
		{name: "decomposer fails", resource: "X", decomposer: &fakeDecomposer{err: errors.New("unparseable")}},
		{name: "no topics", resource: "X", decomposer: &fakeDecomposer{}},
		{name: "blank title", resource: "X", decomposer: &fakeDecomposer{topics: []types.TopicSpec{{Title: " ", Brief: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memdb.New()
			_, err := New(store, tt.decomposer, nil).CreatePlan(context.Background(), tt.resource, "book")
			var planErr *PlanningError
			require.ErrorAs(t, err, &planErr)

			require.NoError(t, store.WithTx(context.Background(), func(tx db.Tx) error {
				plans, err := tx.ListPlans(context.Background())
				require.NoError(t, err)
				assert.Empty(t, plans)
				return nil
			}))
		})
	}
}

func TestNextTopic_LowestPendingAndExhaustion(t *testing.T) {
	store := memdb.New()
	p := New(store, &fakeDecomposer{topics: threeTopics()}, nil)
	ctx := context.Background()
	planID, err := p.CreatePlan(ctx, "X", "book")
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		tp, err := p.NextTopic(ctx, planID)
		require.NoError(t, err)
		require.NotNil(t, tp)
		assert.Equal(t, want, tp.Position)
		assert.Equal(t, db.TopicStatusProcessing, tp.Status)
	}

	tp, err := p.NextTopic(ctx, planID)
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestNextTopic_UnknownPlan(t *testing.T) {
	p := New(memdb.New(), &fakeDecomposer{}, nil)
	_, err := p.NextTopic(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve(t *testing.T) {
	store := memdb.New()
	dec := &fakeDecomposer{topics: threeTopics()}
	p := New(store, dec, nil)
	ctx := context.Background()

	planID, topic, err := p.Resolve(ctx, &types.RunRequest{ResourceName: "X"})
	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, planID, topic.PlanID)
	assert.Equal(t, 1, topic.Position)

	again, topic, err := p.Resolve(ctx, &types.RunRequest{PlanID: &planID})
	require.NoError(t, err)
	assert.Equal(t, planID, again)
	assert.Equal(t, 2, topic.Position)
	assert.Equal(t, 1, dec.calls)

	// A resource name wins over a plan id.
	other, _, err := p.Resolve(ctx, &types.RunRequest{ResourceName: "Y", PlanID: &planID})
	require.NoError(t, err)
	assert.NotEqual(t, planID, other)
	assert.Equal(t, 2, dec.calls)

	_, _, err = p.Resolve(ctx, &types.RunRequest{})
	var planErr *PlanningError
	assert.ErrorAs(t, err, &planErr)
}

func TestPendingCount(t *testing.T) {
	store := memdb.New()
	p := New(store, &fakeDecomposer{topics: threeTopics()}, nil)
	ctx := context.Background()
	planID, err := p.CreatePlan(ctx, "X", "book")
	require.NoError(t, err)

	n, err := p.PendingCount(ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = p.NextTopic(ctx, planID)
	require.NoError(t, err)
	n, err = p.PendingCount(ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAdmin_GetResetDelete(t *testing.T) {
	store := memdb.New()
	p := New(store, &fakeDecomposer{topics: threeTopics()}, nil)
	ctx := context.Background()

	planID, err := p.CreatePlan(ctx, "Atomic Habits", "")
	require.NoError(t, err)

	plans, err := p.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	topic, err := p.NextTopic(ctx, planID)
	require.NoError(t, err)

	detail, err := p.GetPlan(ctx, planID)
	require.NoError(t, err)
	assert.Len(t, detail.Topics, 3)
	assert.Equal(t, 2, detail.Pending())
	assert.Equal(t, 1, detail.Counts[db.TopicStatusProcessing])

	reset, err := p.ResetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, db.TopicStatusPending, reset.Status)

	_, err = p.ResetTopic(ctx, topic.ID)
	assert.ErrorIs(t, err, db.ErrInvalidTransition)

	_, err = p.ResetTopic(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, p.DeletePlan(ctx, planID))
	_, err = p.GetPlan(ctx, planID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, p.DeletePlan(ctx, planID), ErrNotFound)
}
