package control

// Mailbox is a one-slot channel where a newer value replaces an unread
// older one. Put never blocks. Only one goroutine may Put.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, dropping any value not yet received.
func (m *Mailbox[T]) Put(v T) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// C is the receive side.
func (m *Mailbox[T]) C() <-chan T {
	return m.ch
}
