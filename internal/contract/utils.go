package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Favourite marker constants.
const (
	FavouriteValue    = "★" // FavouriteValue marks a favourite contact
	NotFavouriteValue = "-" // NotFavouriteValue marks a regular contact
)

// Color variables for console output.
var (
	FavouriteColor = color.New(color.FgYellow, color.Bold) // FavouriteColor highlights favourite contacts.
	HeaderColor    = color.New(color.FgCyan)               // HeaderColor is used for page and summary lines.
	StaleColor     = color.New(color.FgMagenta)            // StaleColor flags data served from a stale cache entry.
)

// GetPlainFavourite returns the plain text marker for a favourite flag.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainFavourite(favourite bool) string {
	if favourite {
		return FavouriteValue
	}
	return NotFavouriteValue
}

// GetColorFavourite returns a colored marker for console output (table).
func GetColorFavourite(favourite bool) string {
	text := GetPlainFavourite(favourite)
	if favourite {
		return FavouriteColor.Sprint(text)
	}
	return text
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the durable query cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".contacts_cache.db"
	}
	return filepath.Join(homeDir, ".contacts_cache.db")
}

// Truncate shortens s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one rune of content.
func Truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
