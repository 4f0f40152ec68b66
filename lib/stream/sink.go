package stream

// Sink is an implementation of a message sync; it receives messages broadcast by its parent source.
type Sink[T any] struct {
	id      string
	channel chan T

	source *Source[T]
}

// ID returns the unique identifier of this sink.
func (s *Sink[T]) ID() string {
	return s.id
}

// Messages returns the read channel of messages broadcast by the source.
// The backing channel is buffered to allow for additional messages to be generated
// while the current message is being processed; that being said the sink has a responsibility
// to consume messages from this channel as quickly as possible.
func (s *Sink[T]) Messages() <-chan T {
	return s.channel
}

// Close releases any resources allocated as part of this sink's creation.
func (s *Sink[T]) Close() {
	s.source.removeSink(s)
	close(s.channel)
}
