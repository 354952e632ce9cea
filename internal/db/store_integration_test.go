//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_RollbackOnError_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	var planID uuid.UUID
	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx Tx) error {
		plan, err := tx.CreatePlan(ctx, &PlanInput{ResourceName: "Rolled Back"})
		require.NoError(t, err)
		planID = plan.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = db.WithTx(ctx, func(tx Tx) error {
		plan, err := tx.GetPlan(ctx, planID)
		require.NoError(t, err)
		assert.Nil(t, plan)
		return nil
	})
	require.NoError(t, err)
}

func TestCreatePlan_Defaults_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	plan, topics := seedPlan(t, db, 3)
	assert.Equal(t, "book", plan.ResourceKind)
	assert.Equal(t, "Integration Book content outline", plan.Description)
	assert.Equal(t, 3, plan.TotalTopicCount)
	require.Len(t, topics, 3)
	for i, tp := range topics {
		assert.Equal(t, i+1, tp.Position)
		assert.Equal(t, TopicStatusPending, tp.Status)
		assert.Equal(t, []string{"k1", "k2"}, tp.Keywords)
	}
}

func TestClaimNextTopic_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	plan, topics := seedPlan(t, db, 2)

	var first, second, third *Topic
	err := db.WithTx(ctx, func(tx Tx) error {
		var err error
		if first, err = tx.ClaimNextTopic(ctx, plan.ID); err != nil {
			return err
		}
		if second, err = tx.ClaimNextTopic(ctx, plan.ID); err != nil {
			return err
		}
		third, err = tx.ClaimNextTopic(ctx, plan.ID)
		return err
	})
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Nil(t, third)
	assert.Equal(t, topics[0].ID, first.ID)
	assert.Equal(t, topics[1].ID, second.ID)
	assert.Equal(t, TopicStatusProcessing, first.Status)
}

func TestClaimNextTopic_ConcurrentClaimsAreDisjoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	plan, _ := seedPlan(t, db, 4)

	var mu sync.Mutex
	claimed := make(map[uuid.UUID]int)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.WithTx(ctx, func(tx Tx) error {
				tp, err := tx.ClaimNextTopic(ctx, plan.ID)
				if err != nil || tp == nil {
					return err
				}
				mu.Lock()
				claimed[tp.ID]++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	for id, n := range claimed {
		assert.Equal(t, 1, n, "topic %s claimed more than once", id)
	}
}

func TestUpdateTopicStatus_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	plan, topics := seedPlan(t, db, 2)

	err := db.WithTx(ctx, func(tx Tx) error {
		_, err := tx.UpdateTopicStatus(ctx, topics[0].ID, TopicStatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		return nil
	})
	require.NoError(t, err)

	err = db.WithTx(ctx, func(tx Tx) error {
		tp, err := tx.ClaimNextTopic(ctx, plan.ID)
		require.NoError(t, err)
		tp, err = tx.UpdateTopicStatus(ctx, tp.ID, TopicStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, TopicStatusCompleted, tp.Status)

		refreshed, err := tx.RefreshPlanProgress(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshed.CompletedTopicCount)

		counts, err := tx.CountTopicsByStatus(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[TopicStatusCompleted])
		assert.Equal(t, 1, counts[TopicStatusPending])
		return nil
	})
	require.NoError(t, err)

	err = db.WithTx(ctx, func(tx Tx) error {
		_, err := tx.UpdateTopicStatus(ctx, uuid.New(), TopicStatusFailed)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestResetTopic_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	plan, _ := seedPlan(t, db, 1)

	err := db.WithTx(ctx, func(tx Tx) error {
		tp, err := tx.ClaimNextTopic(ctx, plan.ID)
		require.NoError(t, err)
		_, err = tx.UpdateTopicStatus(ctx, tp.ID, TopicStatusFailed)
		require.NoError(t, err)

		reset, err := tx.ResetTopic(ctx, tp.ID)
		require.NoError(t, err)
		assert.Equal(t, TopicStatusPending, reset.Status)

		_, err = tx.ResetTopic(ctx, tp.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		return nil
	})
	require.NoError(t, err)
}

func TestReferenceItems_RankedByEngagement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, topics := seedPlan(t, db, 1)

	err := db.WithTx(ctx, func(tx Tx) error {
		_, err := tx.CreateReferenceItems(ctx, topics[0].ID, []ReferenceItemInput{
			{ExternalID: "b", Likes: 80, Collects: 60},
			{ExternalID: "a", Likes: 100, Collects: 50},
			{ExternalID: "c", Likes: 1, Collects: 1},
		})
		require.NoError(t, err)

		items, err := tx.ListReferenceItems(ctx, topics[0].ID, 2)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].ExternalID)
		assert.Equal(t, "b", items[1].ExternalID)
		return nil
	})
	require.NoError(t, err)
}

func TestContentAndPublishAttempts_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, topics := seedPlan(t, db, 1)
	topicID := topics[0].ID

	err := db.WithTx(ctx, func(tx Tx) error {
		content, err := tx.CreateContent(ctx, topicID, &DraftInput{Title: "raw", Body: "raw body", Tags: []string{"a", "a"}})
		require.NoError(t, err)
		assert.False(t, content.IsRefined())
		assert.Equal(t, []string{"a", "a"}, content.Tags)

		refined, err := tx.UpdateContentRefinement(ctx, content.ID, &RefinementInput{
			Title: "refined", Body: "refined body", Tags: []string{"x"}, Notes: "tightened",
		})
		require.NoError(t, err)
		assert.Equal(t, content.ID, refined.ID)
		assert.True(t, refined.IsRefined())
		require.NotNil(t, refined.OptimizationNotes)

		failed, err := tx.CreatePublishAttempt(ctx, content.ID)
		require.NoError(t, err)
		failed, err = tx.UpdatePublishAttempt(ctx, failed.ID, &PublishAttemptUpdate{
			Status: AttemptStatusFailed, ErrorMessage: "rate limited",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, failed.RetryCount)
		assert.Nil(t, failed.PublishTime)

		ok, err := tx.CreatePublishAttempt(ctx, content.ID)
		require.NoError(t, err)
		ok, err = tx.UpdatePublishAttempt(ctx, ok.ID, &PublishAttemptUpdate{
			Status: AttemptStatusSuccess, ExternalPostID: "post-1",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, ok.RetryCount)
		require.NotNil(t, ok.PublishTime)

		latest, err := tx.LatestPublishAttempt(ctx, content.ID)
		require.NoError(t, err)
		assert.Equal(t, ok.ID, latest.ID)

		all, err := tx.ListPublishAttempts(ctx, content.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		return nil
	})
	require.NoError(t, err)

	err = db.WithTx(ctx, func(tx Tx) error {
		_, err := tx.CreateContent(ctx, topicID, &DraftInput{Title: "again", Body: "again"})
		assert.ErrorIs(t, err, ErrConflict)
		return err
	})
	require.Error(t, err)
}

func TestAcquire_PoolExhausted_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	db.acquireTimeout = 100 * time.Millisecond
	defer db.Close()
	ctx := context.Background()

	held := make([]func(), 0)
	for {
		conn, err := db.acquire(ctx)
		if err != nil {
			assert.ErrorIs(t, err, ErrResourceExhausted)
			break
		}
		held = append(held, conn.Release)
	}
	for _, release := range held {
		release()
	}
	assert.NotEmpty(t, held)
}
