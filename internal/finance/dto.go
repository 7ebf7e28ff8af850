package finance

import (
	"time"

	"github.com/aburizalp/ministry-management/internal"
)

type CreateDesignationDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreateDesignationDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RecordContributionDTO struct {
	MemberID      int64     `json:"member_id"`
	DesignationID int64     `json:"designation_id"`
	AmountMinor   int64     `json:"amount_minor"`
	GivenAt       time.Time `json:"given_at"`
}

func (d RecordContributionDTO) Validate() *internal.AppError {
	if d.MemberID <= 0 {
		return internal.NewValidationFieldError("member_id", "member_id is required", internal.ErrCodeValidationFailed)
	}
	if d.DesignationID <= 0 {
		return internal.NewValidationFieldError("designation_id", "designation_id is required", internal.ErrCodeValidationFailed)
	}
	if d.AmountMinor <= 0 {
		return internal.NewValidationFieldError("amount_minor", "amount_minor must be positive", internal.ErrCodeInvalidAmount)
	}
	if d.GivenAt.IsZero() {
		return internal.NewValidationFieldError("given_at", "given_at is required", internal.ErrCodeInvalidDate)
	}
	return nil
}
