package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"apin-chat/internal/constant"
	"apin-chat/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsArePublishedInMutationOrder(t *testing.T) {
	gw := &fakeGateway{reply: "Hello!", title: "Greeting"}
	s, _, pub, _ := newReadyStore(t, gw)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				chat := s.CreateChat(context.Background())
				s.SelectChat(context.Background(), chat.Id)
				s.DeleteChat(context.Background(), chat.Id)
			}
		}()
	}
	require.NoError(t, s.SendMessage(context.Background(), "Hi"))
	wg.Wait()
	s.Wait()

	seqs := pub.Seqs()
	require.NotEmpty(t, seqs)
	for i, seq := range seqs {
		assert.Equal(t, uint64(i+1), seq, "event %d out of order", i)
	}

	// A chat's creation is always announced before its deletion.
	created := map[string]bool{}
	pub.mu.Lock()
	for _, e := range pub.events {
		id, _ := e.Payload()["chat_id"].(string)
		switch e.EventType() {
		case constant.EventChatCreated:
			created[id] = true
		case constant.EventChatDeleted:
			assert.True(t, created[id], "chat %s deleted before it was created", id)
		}
	}
	pub.mu.Unlock()
}

func TestCheckAvailabilityKeepsNewestProbe(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{availabilityFn: func(call int) llm.Availability {
		if call == 1 {
			<-release
			return llm.UnavailableOther("stale probe")
		}
		return llm.Available()
	}}
	s, _, pub := newTestStore(gw)

	older := make(chan llm.Availability)
	go func() { older <- s.CheckAvailability(context.Background()) }()
	require.Eventually(t, func() bool { return gw.Probes() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, llm.Available(), s.CheckAvailability(context.Background()))
	close(release)

	assert.Equal(t, llm.Available(), <-older, "a superseded probe reports the newer cached value")
	assert.Equal(t, llm.Available(), s.Availability())
	assert.Equal(t, []string{constant.EventAvailabilityChanged}, pub.Types())
}
