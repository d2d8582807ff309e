package dataset

import (
	"encoding/json"
	"fmt"
)

// Required field paths of an input item.
const (
	FieldOutput       = "output"
	FieldHumanImpact  = "output.impact"
	FieldModelImpact  = "impact1"
	humanImpactSubkey = "impact"
)

// Item is one loosely structured input object. Fields other than the
// required ones are kept raw and ignored.
type Item map[string]json.RawMessage

// Record is a validated item: both labels present and textual.
type Record struct {
	HumanImpact string
	ModelImpact string
}

// MissingFieldError reports an item without a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: '%s'", e.Field)
}

// InvalidFieldError reports a required field holding something other than
// a string.
type InvalidFieldError struct {
	Field string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field '%s': %v", e.Field, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// Record extracts the human and model labels. The error is a
// *MissingFieldError or *InvalidFieldError naming the offending field.
// The human label is checked first.
func (it Item) Record() (Record, error) {
	human, err := it.humanImpact()
	if err != nil {
		return Record{}, err
	}

	model, err := stringField(it, FieldModelImpact, FieldModelImpact)
	if err != nil {
		return Record{}, err
	}

	return Record{HumanImpact: human, ModelImpact: model}, nil
}

func (it Item) humanImpact() (string, error) {
	raw, ok := it[FieldOutput]
	if !ok || isNull(raw) {
		return "", &MissingFieldError{Field: FieldOutput}
	}

	var output Item
	if err := json.Unmarshal(raw, &output); err != nil {
		return "", &InvalidFieldError{Field: FieldOutput, Err: err}
	}
	return stringField(output, humanImpactSubkey, FieldHumanImpact)
}

func stringField(obj Item, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", &MissingFieldError{Field: path}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &InvalidFieldError{Field: path, Err: err}
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
