package api

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/warp/leave-engine/timeoff"
)

// DecodeEmployees reads a JSON array of employees in the same shape as the
// POST /api/employees body, validating every element.
func DecodeEmployees(r io.Reader) ([]timeoff.EmployeeRecord, error) {
	var reqs []CreateEmployeeRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	records := make([]timeoff.EmployeeRecord, 0, len(reqs))
	for i, req := range reqs {
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("employee %d: %v", i, validationDetails(err))
		}
		rec, err := req.toRecord()
		if err != nil {
			return nil, fmt.Errorf("employee %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeEmployees writes enriched records as the API would return them.
func EncodeEmployees(w io.Writer, records []timeoff.EnrichedEmployeeRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toEmployeeDTOs(records))
}
