package stream

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type testMessage struct {
	Value  string
	Labels map[string]string
}

func TestNewSink(t *testing.T) {
	s := NewSource[*testMessage](zaptest.NewLogger(t))

	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(t *testing.T, wg *sync.WaitGroup) {
			sink := s.NewSink()
			assert.NotNil(t, sink)
			wg.Done()
		}(t, &wg)
	}

	wg.Wait()
	assert.Equal(t, 1000, s.SinkCount())
}

func TestSinkRemove(t *testing.T) {
	s := NewSource[*testMessage](zaptest.NewLogger(t))

	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(t *testing.T, wg *sync.WaitGroup) {
			sink := s.NewSink()
			assert.NotNil(t, sink)
			sink.Close()

			wg.Done()
		}(t, &wg)
	}

	wg.Wait()
	assert.Equal(t, 0, s.SinkCount())
}

func TestMessaging(t *testing.T) {
	s := NewSource[*testMessage](zaptest.NewLogger(t))

	var sendMessageWg sync.WaitGroup
	var messageReceivedWg sync.WaitGroup

	testMsg := &testMessage{Value: "asdf123"}

	for i := 0; i < 100; i++ {
		sendMessageWg.Add(1)
		messageReceivedWg.Add(1)
		go func(t *testing.T) {
			sink := s.NewSink()
			assert.NotNil(t, sink)
			sendMessageWg.Done()

			max := rand.Intn(5)

			for i := 0; i < max; i++ {
				msg := <-sink.Messages()
				assert.Equal(t, testMsg, msg)
			}

			sink.Close()
			messageReceivedWg.Done()
		}(t)
	}

	sendMessageWg.Wait()

	for i := 0; i < 5; i++ {
		s.SendMessage(testMsg)
	}

	messageReceivedWg.Wait()
	assert.Equal(t, 0, s.SinkCount())
}

func TestSinksReceiveIndependentCopies(t *testing.T) {
	s := NewSource[*testMessage](zaptest.NewLogger(t))

	first := s.NewSink()
	second := s.NewSink()
	defer first.Close()
	defer second.Close()

	s.SendMessage(&testMessage{Value: "board", Labels: map[string]string{"A": "rail"}})

	m1 := <-first.Messages()
	m2 := <-second.Messages()
	m1.Labels["A"] = "changed"

	assert.Equal(t, "rail", m2.Labels["A"])
	assert.Equal(t, "board", m2.Value)
}
