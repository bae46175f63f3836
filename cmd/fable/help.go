// ABOUTME: Help display for the fable CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for polished usage output and envStatus for API key detection.
package main

import (
	"fmt"
	"io"
	"os"
)

const fableASCII = `
      __________________   __________________
  .-/|                  \ /                  |\-.
  ||||                   |                   ||||
  ||||   once upon       |                   ||||
  ||||      a time...    |       ~~*~~       ||||
  ||||                   |                   ||||
  ||||                   |                   ||||
  ||||__________________ | __________________||||
  ||/===================\|/===================\||
  ` + "`" + `--------------------~___~-------------------''
`

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, environment status, and a docs link.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, fableASCII)
	fmt.Fprintf(w, "fable %s — collaborative story explorer\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fable                        Start the TUI client")
	fmt.Fprintln(w, "  fable -url <base-url>        Connect to a specific backend")
	fmt.Fprintln(w, "  fable -server [-port 8000]   Start the development backend")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Client Flags:")
	fmt.Fprintln(w, "  -url <base-url>       Backend base URL (default: http://localhost:8000)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -server               Start the development backend instead of the TUI")
	fmt.Fprintln(w, "  -port <port>          Server port (default: 8000)")
	fmt.Fprintln(w, "  -db <path>            SQLite database path (default: fable.db)")
	fmt.Fprintln(w, "  -seed=false           Skip seeding an empty database with the sample story")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  fable")
	fmt.Fprintln(w, "  fable -url http://stories.example.com:8000")
	fmt.Fprintln(w, "  fable -server")
	fmt.Fprintln(w, "  fable -server -port 9000 -db tales.db")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  OPENAI_API_KEY        %s\n", envStatus("OPENAI_API_KEY"))
	fmt.Fprintf(w, "  OPENAI_MODEL          %s\n", envStatus("OPENAI_MODEL"))
	fmt.Fprintf(w, "  OPENAI_BASE_URL       %s\n", envStatus("OPENAI_BASE_URL"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Without an API key the server answers from its keyword ladder.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Docs: https://github.com/2389-research/fable")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
