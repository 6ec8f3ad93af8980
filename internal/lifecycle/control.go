package lifecycle

import (
	"fmt"

	"servicekit/internal/logger"
)

// ControlEvent is a control request delivered by the SCM.
type ControlEvent int

const (
	ControlOther ControlEvent = iota
	ControlInterrogate
	ControlStop
	ControlPause
	ControlContinue
)

func (e ControlEvent) String() string {
	switch e {
	case ControlInterrogate:
		return "Interrogate"
	case ControlStop:
		return "Stop"
	case ControlPause:
		return "Pause"
	case ControlContinue:
		return "Continue"
	case ControlOther:
		return "Other"
	}
	return fmt.Sprintf("ControlEvent(%d)", int(e))
}

// HandlerResult is what the control handler reports back to the SCM.
type HandlerResult int

const (
	NoError HandlerResult = iota
	NotImplemented
)

func (r HandlerResult) String() string {
	if r == NoError {
		return "NoError"
	}
	return "NotImplemented"
}

// Translator maps SCM control events onto the cancellation signal. Handle is
// called from the SCM dispatch goroutine and never blocks.
type Translator struct {
	signal *Signal
}

// NewTranslator returns a translator that raises sig on Stop.
func NewTranslator(sig *Signal) *Translator {
	return &Translator{signal: sig}
}

// Handle processes one control event. Only Stop has a side effect.
func (t *Translator) Handle(ev ControlEvent) HandlerResult {
	switch ev {
	case ControlInterrogate:
		return NoError
	case ControlStop:
		if t.signal.Set() {
			log := logger.WithComponent("control")
			log.Info().Msg("Stop requested, signalling workers")
		}
		return NoError
	default:
		log := logger.WithComponent("control")
		log.Warn().Str("event", ev.String()).Msg("Control event not implemented")
		return NotImplemented
	}
}
