package ringbuf

// Hooks observes ring activity. Implementations are called synchronously
// from the producer or consumer goroutine that caused the event and must be
// safe for concurrent use by both.
type Hooks interface {
	// HeadAdvanced is called after the producer published n elements.
	HeadAdvanced(n, occupied int)
	// TailAdvanced is called after the consumer released n elements.
	TailAdvanced(n, occupied int)
	// PushRejected is called when Push found the ring full.
	PushRejected()
}

// Option configures a Storage.
type Option func(*options)

type options struct {
	hooks Hooks
}

// WithHooks installs instrumentation hooks. A nil h leaves the ring
// uninstrumented.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

type multiHooks []Hooks

// MultiHooks fans every event out to each of hs in order. Nil entries are
// skipped and nil is returned when nothing is left.
func MultiHooks(hs ...Hooks) Hooks {
	var m multiHooks
	for _, h := range hs {
		if h != nil {
			m = append(m, h)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multiHooks) HeadAdvanced(n, occupied int) {
	for _, h := range m {
		h.HeadAdvanced(n, occupied)
	}
}

func (m multiHooks) TailAdvanced(n, occupied int) {
	for _, h := range m {
		h.TailAdvanced(n, occupied)
	}
}

func (m multiHooks) PushRejected() {
	for _, h := range m {
		h.PushRejected()
	}
}
