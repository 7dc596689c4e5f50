package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteJSON writes the variables as an indented JSON object. Version names
// are written as is, without HTML escaping.
func WriteJSON(w io.Writer, variables map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(variables); err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	return nil
}

// WriteVariable writes the value of one variable. Names match case
// insensitively, so the properties file keys ("versionName") work too.
func WriteVariable(w io.Writer, variables map[string]string, name string) error {
	val, ok := lookupVariable(variables, name)
	if !ok {
		return fmt.Errorf("unknown or unset variable %q", name)
	}
	_, err := fmt.Fprintln(w, val)
	return err
}

func lookupVariable(variables map[string]string, name string) (string, bool) {
	if val, ok := variables[name]; ok {
		return val, true
	}
	for k, val := range variables {
		if strings.EqualFold(k, name) {
			return val, true
		}
	}
	return "", false
}

// WriteAll writes key=value lines sorted by key.
func WriteAll(w io.Writer, variables map[string]string) error {
	for _, k := range sortedKeys(variables) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, variables[k]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(variables map[string]string) []string {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
