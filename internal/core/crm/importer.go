package crm

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RowError reports a rejected CSV row. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ImportResult summarises a customer import.
type ImportResult struct {
	Added  []Customer
	Errors []RowError
}

// columns recognised in an import header, with accepted aliases.
var importColumns = map[string]string{
	"name":      "name",
	"full name": "name",
	"contact":   "name",
	"company":   "company",
	"account":   "company",
	"email":     "email",
	"e-mail":    "email",
	"status":    "status",
	"value":     "value",
	"mrr":       "value",
}

// ImportCustomers reads customers from CSV. The first row is a header; columns
// are matched by name, case-insensitively, and unknown columns are ignored.
// Invalid rows are reported in the result and do not stop the import.
func (s *Service) ImportCustomers(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, errors.New("empty csv")
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := importColumns[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	if _, ok := index["name"]; !ok {
		return res, errors.New("csv header has no name column")
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		in := CustomerInput{
			Name:    field("name"),
			Company: field("company"),
			Email:   field("email"),
			Status:  strings.ToLower(field("status")),
		}
		if v := field("value"); v != "" {
			value, err := strconv.ParseFloat(strings.TrimPrefix(strings.ReplaceAll(v, ",", ""), "$"), 64)
			if err != nil {
				res.Errors = append(res.Errors, RowError{Line: line, Err: fmt.Errorf("invalid value %q", v)})
				continue
			}
			in.Value = value
		}

		c, err := s.AddCustomer(ctx, in)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		res.Added = append(res.Added, c)
	}

	s.log.Info().Int("added", len(res.Added)).Int("rejected", len(res.Errors)).Msg("customer import finished")
	return res, nil
}
