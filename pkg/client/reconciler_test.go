package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavechat-ai/wavechat-server/pkg/client"
)

func TestApplyDeduplicatesByID(t *testing.T) {
	r := client.NewReconciler()

	msg := client.Message{ID: "m1", Role: client.RoleAssistant, Content: "hi"}
	assert.True(t, r.Apply(msg))

	// The same message arriving over the live channel, the HTTP response
	// and a poll must land exactly once.
	assert.False(t, r.Apply(msg))
	assert.False(t, r.Apply(msg))

	assert.Len(t, r.Messages(), 1)
}

func TestApplyAllowsIdenticalContentDistinctIDs(t *testing.T) {
	r := client.NewReconciler()

	assert.True(t, r.Apply(client.Message{ID: "m1", Role: client.RoleUser, Content: "hello"}))
	assert.True(t, r.Apply(client.Message{ID: "m2", Role: client.RoleUser, Content: "hello"}))

	assert.Len(t, r.Messages(), 2)
}

func TestApplyClaimsOptimisticEntry(t *testing.T) {
	r := client.NewReconciler()

	r.AppendLocal(client.RoleUser, "hello")
	require.Len(t, r.Messages(), 1)
	assert.Empty(t, r.Messages()[0].ID)

	// Server echo of the same message claims the id-less entry in place.
	changed := r.Apply(client.Message{ID: "m1", Role: client.RoleUser, Content: "hello"})
	assert.True(t, changed)

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestApplyDoesNotClaimDifferentRole(t *testing.T) {
	r := client.NewReconciler()

	r.AppendLocal(client.RoleUser, "hello")
	r.Apply(client.Message{ID: "m1", Role: client.RoleAssistant, Content: "hello"})

	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Empty(t, msgs[0].ID)
	assert.Equal(t, "m1", msgs[1].ID)
}

func TestResetKeepsPendingLocalEntries(t *testing.T) {
	r := client.NewReconciler()

	r.Apply(client.Message{ID: "m1", Role: client.RoleUser, Content: "first"})
	r.AppendLocal(client.RoleUser, "typed but not yet saved")

	// Snapshot from a poll that predates the optimistic entry.
	r.Reset([]client.Message{
		{ID: "m1", Role: client.RoleUser, Content: "first"},
		{ID: "m2", Role: client.RoleAssistant, Content: "a reply"},
	})

	msgs := r.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, "typed but not yet saved", msgs[2].Content)
	assert.Empty(t, msgs[2].ID)
}

func TestResetDropsConfirmedLocalEntries(t *testing.T) {
	r := client.NewReconciler()

	r.AppendLocal(client.RoleUser, "hello")

	// The snapshot already contains the entry, now with an id.
	r.Reset([]client.Message{
		{ID: "m1", Role: client.RoleUser, Content: "hello"},
	})

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestPollerFetchesImmediatelyAndOnKick(t *testing.T) {
	fetches := make(chan struct{}, 10)
	p := client.NewListPoller(
		time.Hour, // ticker never fires during the test
		func(ctx context.Context) ([]client.ChatSummary, error) {
			return []client.ChatSummary{{ID: "c1"}}, nil
		},
		func(summaries []client.ChatSummary) {
			fetches <- struct{}{}
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// Immediate first poll.
	select {
	case <-fetches:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial poll")
	}

	p.Kick()
	select {
	case <-fetches:
	case <-time.After(2 * time.Second):
		t.Fatal("no poll after kick")
	}
}

func TestPollerReportsErrors(t *testing.T) {
	errs := make(chan error, 1)
	p := client.NewListPoller(
		time.Hour,
		func(ctx context.Context) ([]client.ChatSummary, error) {
			return nil, errors.New("server unreachable")
		},
		func([]client.ChatSummary) { t.Error("onUpdate called for failed fetch") },
		func(err error) { errs <- err },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("error not reported")
	}
}
