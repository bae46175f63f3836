// ABOUTME: Loads KEY=VALUE pairs from a .env file into the process environment at startup.
// ABOUTME: Existing variables always win; the file only fills in what is absent.
package main

import (
	"bufio"
	"os"
	"strings"
)

// loadDotEnv reads a .env file and sets any variables not already present in
// the environment. A missing file is not an error. Lines starting with # are
// comments; "export KEY=VALUE" and quoted values are accepted.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}

// parseEnvLine splits one .env line into a key/value pair. Comments, blank
// lines, and lines without '=' report ok=false.
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	// Split on the first '=' only; values can contain '='.
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	return strings.TrimSpace(key), unquote(strings.TrimSpace(value)), true
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
