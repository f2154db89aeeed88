// Package recovery turns panics into a logged fatal exit.
package recovery

import (
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// exit is replaced in tests.
var exit = os.Exit

// HandlePanic should be deferred at the top of main() or goroutines.
// It logs panic details and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		report(r)
		exit(1)
	}
}

// HandlePanicFunc logs panic details and calls the provided cleanup
// function before exiting. Use it in goroutines that own hardware:
//
//	go func() {
//		defer recovery.HandlePanicFunc(func() { light.Close() })
//		serve()
//	}()
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		report(r)
		if cleanup != nil {
			cleanup()
		}
		exit(1)
	}
}

func report(r interface{}) {
	log.Error().
		Interface("panic", r).
		Str("stack", string(debug.Stack())).
		Msg("fatal panic")
}
