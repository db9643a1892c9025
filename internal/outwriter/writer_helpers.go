package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/contacts/internal/contract"
	"golang.org/x/term"
)

// writeWithFile runs writer against outputFile, or stdout when outputFile is empty.
// Writing to a file reports note on stderr once the file is closed cleanly.
func writeWithFile(outputFile string, writer func(io.Writer) error, note string) (err error) {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return writer(file)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", outputFile, cerr)
		}
		if err == nil {
			fmt.Fprintf(os.Stderr, "💾 %s to %s\n", note, outputFile)
		}
	}()
	return writer(file)
}

// writeJSON encodes data as indented JSON followed by a newline.
func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes header and whatever rows adds, then flushes.
// Errors buffered by the csv writer surface after the flush.
func writeCSVWithHeader(w io.Writer, header []string, rows func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := rows(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// maxCellWidth splits the room left after the fixed columns between the
// three free-text columns of the contact table.
func maxCellWidth(cfg *contract.Config) int {
	// #, Phone, Fav and ID plus borders and padding
	const reserved = 70
	available := (terminalWidth(cfg) - reserved) / 3
	return min(max(available, 12), 40)
}
