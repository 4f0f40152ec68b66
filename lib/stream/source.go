// Package stream broadcasts snapshots from a single producer to any number of consumers.
package stream

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

// Source represents a message source that will be broadcast to its sinks.
type Source[T any] struct {
	logger *zap.Logger

	sinks     map[string]*Sink[T]
	sinksLock sync.Mutex
}

// NewSource creates a new message source.
func NewSource[T any](logger *zap.Logger) *Source[T] {
	return &Source[T]{
		logger: logger,
		sinks:  map[string]*Sink[T]{},
	}
}

// NewSink creates a message sink for this source.
func (s *Source[T]) NewSink() *Sink[T] {
	sink := &Sink[T]{
		id:      uuid.New().String(),
		channel: make(chan T, 10),
		source:  s,
	}

	s.sinksLock.Lock()
	s.sinks[sink.id] = sink
	s.sinksLock.Unlock()

	s.logger.Debug("added watcher",
		zap.String("channel_id", sink.id))
	return sink
}

// SendMessage sends a copy of the message to all created sinks.
// Each sink receives its own deep copy so a consumer can never alter what another one observes.
func (s *Source[T]) SendMessage(msg T) {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	for _, sink := range s.sinks {
		cpy, ok := deepcopy.Copy(msg).(T)
		if !ok {
			cpy = msg
		}

		// Try to write the message to the sink or log that the write failed
		select {
		case sink.channel <- cpy:
		default:
			s.logger.Debug("channel blocked",
				zap.String("channel_id", sink.id),
			)
		}
	}
}

// SinkCount returns the number of currently attached sinks.
func (s *Source[T]) SinkCount() int {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	return len(s.sinks)
}

func (s *Source[T]) removeSink(sink *Sink[T]) {
	s.sinksLock.Lock()
	delete(s.sinks, sink.id)
	s.sinksLock.Unlock()
}
