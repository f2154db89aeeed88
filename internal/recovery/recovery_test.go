package recovery

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func capture(t *testing.T) (*bytes.Buffer, *int) {
	t.Helper()
	var buf bytes.Buffer
	code := -1

	oldLogger, oldExit := log.Logger, exit
	log.Logger = zerolog.New(&buf)
	exit = func(c int) { code = c }
	t.Cleanup(func() {
		log.Logger = oldLogger
		exit = oldExit
	})
	return &buf, &code
}

func TestHandlePanic(t *testing.T) {
	buf, code := capture(t)

	func() {
		defer HandlePanic()
		panic("key line vanished")
	}()

	if *code != 1 {
		t.Errorf("expected exit code 1, got %d", *code)
	}
	if !strings.Contains(buf.String(), "key line vanished") {
		t.Errorf("expected panic value in log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"stack"`) {
		t.Error("expected stack trace in log")
	}
}

func TestHandlePanicNoPanic(t *testing.T) {
	buf, code := capture(t)

	func() {
		defer HandlePanic()
	}()

	if *code != -1 {
		t.Errorf("expected no exit, got %d", *code)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %q", buf.String())
	}
}

func TestHandlePanicFuncRunsCleanup(t *testing.T) {
	_, code := capture(t)
	cleaned := false

	func() {
		defer HandlePanicFunc(func() { cleaned = true })
		panic("boom")
	}()

	if !cleaned {
		t.Error("expected cleanup to run")
	}
	if *code != 1 {
		t.Errorf("expected exit code 1, got %d", *code)
	}
}

func TestHandlePanicFuncNilCleanup(t *testing.T) {
	_, code := capture(t)

	func() {
		defer HandlePanicFunc(nil)
		panic("boom")
	}()

	if *code != 1 {
		t.Errorf("expected exit code 1, got %d", *code)
	}
}
