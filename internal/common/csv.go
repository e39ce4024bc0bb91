// Package common provides the CSV plumbing shared by the CLI commands.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/txcat/internal/fileutils"
	"fjacquet/txcat/internal/logging"

	"github.com/gocarina/gocsv"
)

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger = logging.OrNop(logger)
	logger.Debug("Reading CSV file", logging.Field{Key: logging.FieldFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.Debug("Successfully read CSV data",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return rows, nil
}

// WriteCSVFile writes rows with gocsv, creating the parent directory when needed.
func WriteCSVFile[TCSVRow any](rows []TCSVRow, filePath string, delimiter rune, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}

	file, err := os.Create(filePath) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	csvWriter := csv.NewWriter(file)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	logger.Debug("Successfully wrote CSV file",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return nil
}
