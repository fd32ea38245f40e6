package ringbuf

import "github.com/rs/zerolog"

// LogHooks traces ring activity through a zerolog logger at trace level.
type LogHooks struct {
	logger zerolog.Logger
}

// NewLogHooks returns hooks writing to logger. Events are only formatted
// when the logger is enabled for trace level.
func NewLogHooks(logger zerolog.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) HeadAdvanced(n, occupied int) {
	h.logger.Trace().Int("n", n).Int("occupied", occupied).Msg("head advanced")
}

func (h *LogHooks) TailAdvanced(n, occupied int) {
	h.logger.Trace().Int("n", n).Int("occupied", occupied).Msg("tail advanced")
}

func (h *LogHooks) PushRejected() {
	h.logger.Trace().Msg("push rejected, ring full")
}

var _ Hooks = (*LogHooks)(nil)
