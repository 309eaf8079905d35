package graph

import (
	"encoding/json"
	"fmt"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// Edit is a named, authored batch of ops published as one document.
type Edit struct {
	Name   string `json:"name"`
	Ops    []Op   `json:"ops"`
	Author string `json:"author"`
}

// Validate checks the edit is publishable.
func (e *Edit) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: edit name is required", errors.ErrInvalidInput)
	}
	if e.Author == "" {
		return fmt.Errorf("%w: edit author is required", errors.ErrInvalidInput)
	}
	if len(e.Ops) == 0 {
		return fmt.Errorf("%w: edit %q has no ops", errors.ErrInvalidInput, e.Name)
	}
	for i, op := range e.Ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("%w: op %d: %v", errors.ErrInvalidInput, i, err)
		}
	}
	return nil
}

// Encode serializes the edit for upload.
func (e *Edit) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEdit parses an encoded edit.
func DecodeEdit(data []byte) (*Edit, error) {
	var e Edit
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: decode edit: %v", errors.ErrInvalidInput, err)
	}
	return &e, nil
}
