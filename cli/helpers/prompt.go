package helpers

import (
	"bufio"
	"fmt"
	"io"

	"github.com/compozy/iconpipe/engine/provider"
)

const (
	providerPrompt   = "Choose a provider by number: "
	invalidSelection = "Invalid selection. Please try again."
)

// PrintProviders writes providers as a 1-based numbered list.
func PrintProviders(out io.Writer, providers []string) {
	for i, p := range providers {
		fmt.Fprintf(out, "%d. %s\n", i+1, p)
	}
}

// PromptProvider lists providers and reads lines from in until one resolves.
// It returns ErrNoInput when in is exhausted first.
func PromptProvider(in io.Reader, out io.Writer, providers []string) (string, error) {
	PrintProviders(out, providers)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, providerPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read selection: %w", err)
			}
			return "", ErrNoInput
		}
		choice, err := provider.ResolveIndex(providers, scanner.Text())
		if err == nil {
			return choice, nil
		}
		fmt.Fprintln(out, invalidSelection)
	}
}
