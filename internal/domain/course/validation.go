package course

import "strings"

// ValidateInput validates the fields shared by create and update.
func ValidateInput(name string, status Status) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	if !status.Valid() {
		return ErrInvalidInput
	}
	return nil
}
