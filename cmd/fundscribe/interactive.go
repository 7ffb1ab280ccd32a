package main

import (
	"fmt"

	"github.com/halsteadcap/fundscribe/internal/tui"
)

// runInteractive launches the analyst chat session.
func runInteractive() error {
	dispatcher, _, err := buildDispatcher()
	if err != nil {
		return err
	}

	p := tui.NewProgram(dispatcher)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}
