package companies

import (
	"fmt"
	"strings"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
)

func (s *Service) validate(c Company) error {
	if err := s.validateName(c.Name); err != nil {
		return err
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: company type must be CLIENT or SUPPLIER", httpx.ErrValidation)
	}
	if strings.TrimSpace(c.RegistrationNo) == "" {
		return fmt.Errorf("%w: registration number is required", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: company name is required", httpx.ErrValidation)
	}
	return nil
}
