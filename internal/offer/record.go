package offer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a persisted offer. The backend may send it as a string or a number.
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
		return fmt.Errorf("offer id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Submission is the payload posted to the backend: the draft plus its computed pallet count.
type Submission struct {
	Draft
	PalletCount int `json:"palletCount"`
}

// Record is a persisted offer as listed by the backend.
type Record struct {
	ID ID `json:"id"`
	Draft
	PalletCount int `json:"palletCount"`
}

// Vocabulary lists the admissible values of each categorical offer attribute.
type Vocabulary struct {
	Modes           []string            `json:"modes"`
	MovementTypes   []string            `json:"movementTypes"`
	Incoterms       []string            `json:"incoterms"`
	CountriesCities map[string][]string `json:"countriesCities"`
	PackageTypes    []string            `json:"packageTypes"`
	Unit1           []string            `json:"unit1"`
	Unit2           []string            `json:"unit2"`
	Currencies      []string            `json:"currencies"`
}
