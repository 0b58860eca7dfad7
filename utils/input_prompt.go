package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/josehu07/codetective/constants/lipgloss"
)

// InputPrompt prompts the user for one line of input.
func InputPrompt(reader *bufio.Reader) (string, error) {
	fmt.Print(lipgloss.BlueSky.Render("> "))

	userInput, err := reader.ReadString('\n')
	if userInput == "" {
		return "", nil
	}

	if err != nil {
		if err == io.EOF {
			return "", nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return strings.TrimSpace(userInput), nil
}

// InputPromptWithContext prompts the user with context cancellation support.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		fmt.Print(lipgloss.BlueSky.Render("> "))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				errChan <- nil
			} else {
				errChan <- fmt.Errorf("error reading input: %w", err)
			}
			return
		}

		inputChan <- strings.TrimSpace(userInput)
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}

// ReadMultiline reads lines until a line holding only the terminator (or EOF)
// and returns the joined content. Used for pasting code into the terminal.
func ReadMultiline(reader *bufio.Reader, terminator string) (string, error) {
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == terminator && (err == nil || err == io.EOF) {
			break
		}
		builder.WriteString(trimmed)
		builder.WriteString("\n")

		if err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("error reading input: %w", err)
		}
	}

	return builder.String(), nil
}
