package employees

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	ColumnID         = "id"
	ColumnName       = "name"
	ColumnDepartment = "department"
)

// User-facing messages shown inline on the employee form.
const (
	MessageRequiredFields = "Name and department are required"
	MessageSaveFailed     = "Failed to save employee"
)

var ErrRequiredFields = errors.New("name and department are required")

// ID is the backend primary key. Hosted tables use either identity integers or
// uuids, so both JSON shapes decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode employee id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Fields is the write payload for one row. It never carries the id.
type Fields struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type Employee struct {
	ID ID `json:"id"`
	Fields
}

// Normalize trims surrounding whitespace from every field.
func (f Fields) Normalize() Fields {
	return Fields{
		Name:       strings.TrimSpace(f.Name),
		Department: strings.TrimSpace(f.Department),
		Position:   strings.TrimSpace(f.Position),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
	}
}

func (f Fields) Validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Department) == "" {
		return ErrRequiredFields
	}
	return nil
}
