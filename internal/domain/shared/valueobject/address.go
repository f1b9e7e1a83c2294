package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a value object representing a shipping or billing address
// It is immutable - construct a new value to change it
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// NewAddress creates a validated Address. Full name, line1, city,
// postal code and country are required.
func NewAddress(fullName, line1, line2, city, postalCode, country, phone string) (Address, error) {
	a := Address{
		FullName:   strings.TrimSpace(fullName),
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
		Phone:      strings.TrimSpace(phone),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate checks required fields and length limits
func (a Address) Validate() error {
	if a.FullName == "" {
		return errors.New("address: full name is required")
	}
	if a.Line1 == "" {
		return errors.New("address: line1 is required")
	}
	if a.City == "" {
		return errors.New("address: city is required")
	}
	if a.PostalCode == "" {
		return errors.New("address: postal code is required")
	}
	if len(a.Country) != 2 {
		return errors.New("address: country must be a 2-letter ISO code")
	}
	for _, f := range []string{a.FullName, a.Line1, a.Line2, a.City} {
		if len(f) > 200 {
			return errors.New("address: field exceeds 200 characters")
		}
	}
	return nil
}

// IsZero returns true for an empty address
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns a single-line representation
func (a Address) String() string {
	parts := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, fmt.Sprintf("%s %s", a.PostalCode, a.City), a.Country)
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer for database storage
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	return json.Unmarshal(data, a)
}
