package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// An interrupt already reads as a clean stop to the user.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "clipforge: %v\n", err)
	}
	os.Exit(1)
}
