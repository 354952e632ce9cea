package memdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
)

type memTx struct {
	st  *state
	now func() time.Time
}

var _ db.Tx = (*memTx)(nil)

// ----- Plans -----

func (t *memTx) CreatePlan(_ context.Context, input *db.PlanInput) (*db.Plan, error) {
	kind := strings.TrimSpace(input.ResourceKind)
	if kind == "" {
		kind = db.DefaultResourceKind
	}
	description := input.Description
	if description == "" {
		description = db.DefaultDescription(input.ResourceName)
	}
	now := t.now()
	p := db.Plan{
		ID:              uuid.New(),
		ResourceName:    input.ResourceName,
		ResourceKind:    kind,
		TotalTopicCount: input.TotalTopicCount,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.st.plans[p.ID] = p
	t.st.planOrder = append(t.st.planOrder, p.ID)
	return &p, nil
}

func (t *memTx) GetPlan(_ context.Context, id uuid.UUID) (*db.Plan, error) {
	p, ok := t.st.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *memTx) ListPlans(_ context.Context) ([]db.Plan, error) {
	plans := make([]db.Plan, 0, len(t.st.planOrder))
	for i := len(t.st.planOrder) - 1; i >= 0; i-- {
		plans = append(plans, t.st.plans[t.st.planOrder[i]])
	}
	return plans, nil
}

func (t *memTx) RefreshPlanProgress(_ context.Context, planID uuid.UUID) (*db.Plan, error) {
	p, ok := t.st.plans[planID]
	if !ok {
		return nil, db.ErrNotFound
	}
	completed := 0
	for _, tp := range t.st.topics {
		if tp.PlanID == planID && tp.Status == db.TopicStatusCompleted {
			completed++
		}
	}
	p.CompletedTopicCount = completed
	p.UpdatedAt = t.now()
	t.st.plans[planID] = p
	return &p, nil
}

func (t *memTx) DeletePlan(_ context.Context, planID uuid.UUID) error {
	if _, ok := t.st.plans[planID]; !ok {
		return db.ErrNotFound
	}
	for id, tp := range t.st.topics {
		if tp.PlanID != planID {
			continue
		}
		if contentID, ok := t.st.byTopic[id]; ok {
			delete(t.st.attempts, contentID)
			delete(t.st.contents, contentID)
			delete(t.st.byTopic, id)
		}
		delete(t.st.refs, id)
		delete(t.st.topics, id)
	}
	delete(t.st.plans, planID)
	for i, id := range t.st.planOrder {
		if id == planID {
			t.st.planOrder = append(t.st.planOrder[:i], t.st.planOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ----- Topics -----

func (t *memTx) CreateTopics(_ context.Context, planID uuid.UUID, inputs []db.TopicInput) ([]db.Topic, error) {
	if _, ok := t.st.plans[planID]; !ok {
		return nil, &db.StorageError{Op: "create topic", Cause: fmt.Errorf("plan %s does not exist", planID)}
	}
	taken := make(map[int]bool)
	for _, tp := range t.st.topics {
		if tp.PlanID == planID {
			taken[tp.Position] = true
		}
	}

	now := t.now()
	topics := make([]db.Topic, 0, len(inputs))
	for _, in := range inputs {
		if taken[in.Position] {
			return nil, &db.StorageError{Op: "create topic", Cause: fmt.Errorf("%w: position %d", db.ErrConflict, in.Position)}
		}
		taken[in.Position] = true
		tp := db.Topic{
			ID:        uuid.New(),
			PlanID:    planID,
			Title:     in.Title,
			Brief:     in.Brief,
			Position:  in.Position,
			Status:    db.TopicStatusPending,
			Keywords:  cloneStrings(in.Keywords),
			CreatedAt: now,
			UpdatedAt: now,
		}
		t.st.topics[tp.ID] = tp
		tp.Keywords = cloneStrings(tp.Keywords)
		topics = append(topics, tp)
	}
	return topics, nil
}

func (t *memTx) GetTopic(_ context.Context, id uuid.UUID) (*db.Topic, error) {
	tp, ok := t.st.topics[id]
	if !ok {
		return nil, nil
	}
	tp.Keywords = cloneStrings(tp.Keywords)
	return &tp, nil
}

func (t *memTx) ListTopics(_ context.Context, planID uuid.UUID) ([]db.Topic, error) {
	var topics []db.Topic
	for _, tp := range t.st.topics {
		if tp.PlanID == planID {
			tp.Keywords = cloneStrings(tp.Keywords)
			topics = append(topics, tp)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Position < topics[j].Position })
	return topics, nil
}

func (t *memTx) CountTopicsByStatus(_ context.Context, planID uuid.UUID) (map[string]int, error) {
	counts := make(map[string]int)
	for _, tp := range t.st.topics {
		if tp.PlanID == planID {
			counts[tp.Status]++
		}
	}
	return counts, nil
}

func (t *memTx) ClaimNextTopic(ctx context.Context, planID uuid.UUID) (*db.Topic, error) {
	var next *db.Topic
	for _, tp := range t.st.topics {
		if tp.PlanID != planID || tp.Status != db.TopicStatusPending {
			continue
		}
		if next == nil || tp.Position < next.Position {
			candidate := tp
			next = &candidate
		}
	}
	if next == nil {
		return nil, nil
	}
	return t.UpdateTopicStatus(ctx, next.ID, db.TopicStatusProcessing)
}

func (t *memTx) UpdateTopicStatus(_ context.Context, id uuid.UUID, status string) (*db.Topic, error) {
	tp, ok := t.st.topics[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if !db.CanTransition(tp.Status, status) {
		return nil, fmt.Errorf("%w: topic %s is %s, cannot move to %s", db.ErrInvalidTransition, id, tp.Status, status)
	}
	return t.setTopicStatus(tp, status), nil
}

func (t *memTx) ResetTopic(_ context.Context, id uuid.UUID) (*db.Topic, error) {
	tp, ok := t.st.topics[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if !db.CanReset(tp.Status) {
		return nil, fmt.Errorf("%w: topic %s is %s, cannot move to %s", db.ErrInvalidTransition, id, tp.Status, db.TopicStatusPending)
	}
	return t.setTopicStatus(tp, db.TopicStatusPending), nil
}

func (t *memTx) setTopicStatus(tp db.Topic, status string) *db.Topic {
	tp.Status = status
	tp.UpdatedAt = t.now()
	t.st.topics[tp.ID] = tp
	tp.Keywords = cloneStrings(tp.Keywords)
	return &tp
}

// ----- Reference items -----

func (t *memTx) CreateReferenceItems(_ context.Context, topicID uuid.UUID, inputs []db.ReferenceItemInput) ([]db.ReferenceItem, error) {
	if _, ok := t.st.topics[topicID]; !ok {
		return nil, &db.StorageError{Op: "create reference item", Cause: fmt.Errorf("topic %s does not exist", topicID)}
	}
	now := t.now()
	items := make([]db.ReferenceItem, 0, len(inputs))
	for _, in := range inputs {
		r := db.ReferenceItem{
			ID:         uuid.New(),
			TopicID:    topicID,
			ExternalID: in.ExternalID,
			Title:      in.Title,
			Excerpt:    in.Excerpt,
			Author:     in.Author,
			Likes:      in.Likes,
			Collects:   in.Collects,
			Comments:   in.Comments,
			URL:        in.URL,
			CreatedAt:  now,
		}
		items = append(items, r)
	}
	t.st.refs[topicID] = append(t.st.refs[topicID], items...)
	return items, nil
}

func (t *memTx) ListReferenceItems(_ context.Context, topicID uuid.UUID, limit int) ([]db.ReferenceItem, error) {
	stored := t.st.refs[topicID]
	items := make([]db.ReferenceItem, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		items = append(items, stored[i])
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Engagement() > items[j].Engagement() })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ----- Contents -----

func (t *memTx) CreateContent(_ context.Context, topicID uuid.UUID, input *db.DraftInput) (*db.Content, error) {
	if _, ok := t.st.topics[topicID]; !ok {
		return nil, &db.StorageError{Op: "create content", Cause: fmt.Errorf("topic %s does not exist", topicID)}
	}
	if _, exists := t.st.byTopic[topicID]; exists {
		return nil, &db.StorageError{Op: "create content", Cause: fmt.Errorf("%w: topic %s already has content", db.ErrConflict, topicID)}
	}
	now := t.now()
	c := db.Content{
		ID:        uuid.New(),
		TopicID:   topicID,
		RawTitle:  input.Title,
		RawBody:   input.Body,
		Tags:      cloneStrings(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.st.contents[c.ID] = c
	t.st.byTopic[topicID] = c.ID
	out := cloneContent(c)
	return &out, nil
}

func (t *memTx) GetContentByTopic(_ context.Context, topicID uuid.UUID) (*db.Content, error) {
	id, ok := t.st.byTopic[topicID]
	if !ok {
		return nil, nil
	}
	c := cloneContent(t.st.contents[id])
	return &c, nil
}

func (t *memTx) UpdateContentRefinement(_ context.Context, contentID uuid.UUID, input *db.RefinementInput) (*db.Content, error) {
	c, ok := t.st.contents[contentID]
	if !ok {
		return nil, db.ErrNotFound
	}
	title, body := input.Title, input.Body
	c.RefinedTitle = &title
	c.RefinedBody = &body
	c.Tags = cloneStrings(input.Tags)
	c.OptimizationNotes = nil
	if input.Notes != "" {
		notes := input.Notes
		c.OptimizationNotes = &notes
	}
	c.UpdatedAt = t.now()
	t.st.contents[contentID] = c
	out := cloneContent(c)
	return &out, nil
}

// ----- Publish attempts -----

func (t *memTx) CreatePublishAttempt(_ context.Context, contentID uuid.UUID) (*db.PublishAttempt, error) {
	if _, ok := t.st.contents[contentID]; !ok {
		return nil, &db.StorageError{Op: "create publish attempt", Cause: fmt.Errorf("content %s does not exist", contentID)}
	}
	a := db.PublishAttempt{
		ID:        uuid.New(),
		ContentID: contentID,
		Status:    db.AttemptStatusPending,
		CreatedAt: t.now(),
	}
	t.st.attempts[contentID] = append(t.st.attempts[contentID], a)
	return &a, nil
}

func (t *memTx) UpdatePublishAttempt(_ context.Context, id uuid.UUID, update *db.PublishAttemptUpdate) (*db.PublishAttempt, error) {
	switch update.Status {
	case db.AttemptStatusPending, db.AttemptStatusSuccess, db.AttemptStatusFailed:
	default:
		return nil, fmt.Errorf("unknown publish attempt status %q", update.Status)
	}

	for contentID, attempts := range t.st.attempts {
		for i, a := range attempts {
			if a.ID != id {
				continue
			}
			a.Status = update.Status
			if update.ExternalPostID != "" {
				postID := update.ExternalPostID
				a.ExternalPostID = &postID
			}
			a.ErrorMessage = nil
			if update.ErrorMessage != "" {
				msg := update.ErrorMessage
				a.ErrorMessage = &msg
			}
			switch update.Status {
			case db.AttemptStatusFailed:
				a.RetryCount++
			case db.AttemptStatusSuccess:
				now := t.now()
				a.PublishTime = &now
			}
			t.st.attempts[contentID][i] = a
			out := cloneAttempt(a)
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (t *memTx) LatestPublishAttempt(_ context.Context, contentID uuid.UUID) (*db.PublishAttempt, error) {
	attempts := t.st.attempts[contentID]
	if len(attempts) == 0 {
		return nil, nil
	}
	a := cloneAttempt(attempts[len(attempts)-1])
	return &a, nil
}

func (t *memTx) ListPublishAttempts(_ context.Context, contentID uuid.UUID) ([]db.PublishAttempt, error) {
	attempts := make([]db.PublishAttempt, 0, len(t.st.attempts[contentID]))
	for _, a := range t.st.attempts[contentID] {
		attempts = append(attempts, cloneAttempt(a))
	}
	return attempts, nil
}
