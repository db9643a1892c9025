package iocache

import (
	"fmt"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects anything but a plain SQL identifier, since table
// names are formatted into statements.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q (must match %s)", name, tableNamePattern)
	}
	return nil
}
