//go:build !preview

// Command ewpreview shows the demo scene in a desktop window.
//
// Build with -tags preview.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "ewpreview: built without the preview tag; rebuild with -tags preview")
	os.Exit(2)
}
