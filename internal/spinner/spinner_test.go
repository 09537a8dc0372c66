package spinner_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/metodolab/metodobot/internal/spinner"
)

func TestNonTerminalStaysSilent(t *testing.T) {
	var buf bytes.Buffer
	s := spinner.New(&buf, "cargando")

	s.Start()
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("non-terminal writer should see no output, got %q", buf.String())
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := spinner.New(&bytes.Buffer{}, "cargando")
	s.Stop() // must not panic or write
	s.Stop()
}

func TestWhilePropagatesError(t *testing.T) {
	s := spinner.New(&bytes.Buffer{}, "consultando")
	want := errors.New("backend down")

	if err := s.While(func() error { return want }); !errors.Is(err, want) {
		t.Errorf("While returned %v, expected the callback error", err)
	}
	if err := s.While(func() error { return nil }); err != nil {
		t.Errorf("While returned %v for nil callback error", err)
	}
}

func TestSetMessage(t *testing.T) {
	s := spinner.New(&bytes.Buffer{}, "uno")
	s.SetMessage("dos") // safe whether or not the spinner is running
}
