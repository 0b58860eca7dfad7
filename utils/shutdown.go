package utils

import (
	"context"
	"fmt"

	"github.com/josehu07/codetective/constants/lipgloss"
)

// GracefulShutdown waits for the context to be cancelled (e.g. by SIGINT) and
// then runs the given cleanup callbacks before the process exits.
func GracefulShutdown(ctx context.Context, cleanups ...func()) {
	<-ctx.Done()
	for _, cleanup := range cleanups {
		cleanup()
	}
	fmt.Println(lipgloss.Yellow.Render("\nExiting..."))
}
