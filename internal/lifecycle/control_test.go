package lifecycle

import "testing"

func TestTranslator_OnlyStopSetsSignal(t *testing.T) {
	tests := []struct {
		event      ControlEvent
		wantResult HandlerResult
		wantSet    bool
	}{
		{ControlInterrogate, NoError, false},
		{ControlStop, NoError, true},
		{ControlPause, NotImplemented, false},
		{ControlContinue, NotImplemented, false},
		{ControlOther, NotImplemented, false},
		{ControlEvent(99), NotImplemented, false},
	}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			sig := NewSignal()
			tr := NewTranslator(sig)

			if got := tr.Handle(tt.event); got != tt.wantResult {
				t.Errorf("Handle(%s) = %s, want %s", tt.event, got, tt.wantResult)
			}
			if sig.IsSet() != tt.wantSet {
				t.Errorf("signal set = %v, want %v", sig.IsSet(), tt.wantSet)
			}
		})
	}
}

func TestTranslator_RepeatedStop(t *testing.T) {
	sig := NewSignal()
	tr := NewTranslator(sig)

	for i := 0; i < 3; i++ {
		if got := tr.Handle(ControlStop); got != NoError {
			t.Fatalf("Stop #%d returned %s", i+1, got)
		}
	}
	if !sig.IsSet() {
		t.Error("signal should be set")
	}

	// Interrogate after stop still acknowledges and changes nothing.
	if got := tr.Handle(ControlInterrogate); got != NoError {
		t.Errorf("Interrogate after stop returned %s", got)
	}
}
