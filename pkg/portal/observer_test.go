package portal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/identity/identitytest"
	"github.com/tendant/portfolio-gate/pkg/portal"
)

type recordingSubscriber struct {
	name  string
	state *portal.SessionState
	log   *[]string
	seen  []portal.Change
	// mirrored is what the state held when the subscriber ran.
	mirrored []*domain.Session
}

func (s *recordingSubscriber) OnSessionChange(_ context.Context, c portal.Change) {
	*s.log = append(*s.log, s.name)
	s.seen = append(s.seen, c)
	s.mirrored = append(s.mirrored, s.state.Current())
}

func TestObserver_OrderAndHeartbeat(t *testing.T) {
	b := identitytest.New()
	b.AddUser("ana@example.com", "secret1", "Ana", true)
	client := identitytest.NewService(b).NewClient(identity.ClientOpts{})
	state := portal.NewSessionState()

	var order []string
	first := &recordingSubscriber{name: "first", state: state, log: &order}
	second := &recordingSubscriber{name: "second", state: state, log: &order}
	obs := portal.NewObserver(client, state, first, second)
	ctx := context.Background()

	obs.Resume(ctx)
	defer obs.Stop()
	require.Len(t, first.seen, 1)
	assert.Nil(t, first.seen[0].Session)
	assert.False(t, first.seen[0].Heartbeat)

	session, err := client.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
	require.Len(t, first.seen, 2)
	assert.True(t, first.seen[1].Heartbeat)
	assert.Equal(t, session, first.mirrored[1])
	assert.Equal(t, session, second.mirrored[1])

	obs.Resync(ctx, session)
	require.Len(t, first.seen, 3)
	assert.False(t, first.seen[2].Heartbeat)

	obs.Stop()
	require.NoError(t, client.SignOut(ctx))
	assert.Len(t, first.seen, 3)
	assert.Equal(t, session, state.Current())
}

func TestObserver_StartCountsInitialSession(t *testing.T) {
	b := identitytest.New()
	b.AddUser("ana@example.com", "secret1", "Ana", true)
	svc := identitytest.NewService(b)
	ctx := context.Background()

	signedIn := svc.NewClient(identity.ClientOpts{})
	_, err := signedIn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	tokens := signedIn.Tokens()

	client := svc.NewClient(identity.ClientOpts{})
	client.Restore(ctx, tokens.AccessToken, tokens.RefreshToken)

	state := portal.NewSessionState()
	var order []string
	sub := &recordingSubscriber{name: "sub", state: state, log: &order}
	obs := portal.NewObserver(client, state, sub)
	obs.Start(ctx)
	defer obs.Stop()

	require.Len(t, sub.seen, 1)
	assert.True(t, sub.seen[0].Heartbeat)
	require.NotNil(t, sub.seen[0].Session)
	assert.Equal(t, "ana@example.com", sub.seen[0].Session.Email)
}

func TestObserver_StartIsIdempotent(t *testing.T) {
	client := identitytest.NewService(identitytest.New()).NewClient(identity.ClientOpts{})
	state := portal.NewSessionState()
	var order []string
	sub := &recordingSubscriber{name: "sub", state: state, log: &order}
	obs := portal.NewObserver(client, state, sub)

	obs.Start(context.Background())
	obs.Start(context.Background())
	defer obs.Stop()

	assert.Len(t, sub.seen, 1)
}
