package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicStatusConstants(t *testing.T) {
	assert.Equal(t, "pending", TopicStatusPending)
	assert.Equal(t, "processing", TopicStatusProcessing)
	assert.Equal(t, "completed", TopicStatusCompleted)
	assert.Equal(t, "failed", TopicStatusFailed)
}

func TestAttemptStatusConstants(t *testing.T) {
	assert.Equal(t, "pending", AttemptStatusPending)
	assert.Equal(t, "success", AttemptStatusSuccess)
	assert.Equal(t, "failed", AttemptStatusFailed)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{TopicStatusPending, TopicStatusProcessing, true},
		{TopicStatusProcessing, TopicStatusCompleted, true},
		{TopicStatusProcessing, TopicStatusFailed, true},
		{TopicStatusPending, TopicStatusCompleted, false},
		{TopicStatusPending, TopicStatusFailed, false},
		{TopicStatusCompleted, TopicStatusProcessing, false},
		{TopicStatusFailed, TopicStatusProcessing, false},
		{TopicStatusFailed, TopicStatusPending, false},
		{TopicStatusProcessing, TopicStatusPending, false},
		{TopicStatusCompleted, TopicStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanReset(t *testing.T) {
	assert.True(t, CanReset(TopicStatusFailed))
	assert.True(t, CanReset(TopicStatusProcessing))
	assert.False(t, CanReset(TopicStatusPending))
	assert.False(t, CanReset(TopicStatusCompleted))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TopicStatusCompleted))
	assert.True(t, IsTerminal(TopicStatusFailed))
	assert.False(t, IsTerminal(TopicStatusPending))
	assert.False(t, IsTerminal(TopicStatusProcessing))
}

func TestPlan_ProgressPercent(t *testing.T) {
	p := &Plan{TotalTopicCount: 4, CompletedTopicCount: 1}
	assert.InDelta(t, 25.0, p.ProgressPercent(), 0.001)

	empty := &Plan{}
	assert.Equal(t, 0.0, empty.ProgressPercent())
}

func TestDefaultDescription(t *testing.T) {
	assert.Equal(t, "Deep Work content outline", DefaultDescription("Deep Work"))
}

func TestReferenceItem_Engagement(t *testing.T) {
	a := &ReferenceItem{Likes: 100, Collects: 50, Comments: 999}
	b := &ReferenceItem{Likes: 80, Collects: 60}
	assert.Equal(t, 150, a.Engagement())
	assert.Equal(t, 140, b.Engagement())
	assert.Greater(t, a.Engagement(), b.Engagement())
}

func TestContent_IsRefined(t *testing.T) {
	c := &Content{RawTitle: "raw", RawBody: "body"}
	assert.False(t, c.IsRefined())

	title, body := "refined", "refined body"
	c.RefinedTitle = &title
	c.RefinedBody = &body
	assert.True(t, c.IsRefined())
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := storageErr("create plan", cause)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "create plan", se.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage error: failed to create plan: connection reset", err.Error())
}

func TestStorageError_UniqueViolationIsConflict(t *testing.T) {
	err := storageErr("create content", &pgconn.PgError{Code: "23505", ConstraintName: "contents_topic_id_key"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "contents_topic_id_key")
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Equal(t, 10, cfg.MaxConns)
	assert.Equal(t, 20, cfg.MaxOverflow)
	assert.Positive(t, cfg.AcquireTimeout)
}

func TestMigrationFiles_Embedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
