package customers

import (
	"time"

	"github.com/google/uuid"
)

type AddressRequest struct {
	Line1    string `json:"line1" validate:"required,max=200"`
	Line2    string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City     string `json:"city" validate:"required,max=100"`
	Postcode string `json:"postcode" validate:"required,max=20"`
}

type RegisterCustomerRequest struct {
	UserID      string         `json:"user_id" validate:"required,max=100"`
	TitleID     uuid.UUID      `json:"title_id" validate:"required"`
	FirstName   string         `json:"first_name" validate:"required,max=100"`
	LastName    string         `json:"last_name" validate:"required,max=100"`
	Email       string         `json:"email" validate:"required,email"`
	Mobile      string         `json:"mobile" validate:"omitempty,max=50"`
	DateOfBirth time.Time      `json:"date_of_birth" validate:"required"`
	ShopID      uuid.UUID      `json:"shop_id" validate:"required"`
	DoctorID    uuid.UUID      `json:"doctor_id" validate:"required"`
	Address     AddressRequest `json:"address" validate:"required"`
}

type UpdateCustomerRequest struct {
	CustomerID  uuid.UUID      `json:"customer_id" validate:"required"`
	TitleID     uuid.UUID      `json:"title_id" validate:"required"`
	FirstName   string         `json:"first_name" validate:"required,max=100"`
	LastName    string         `json:"last_name" validate:"required,max=100"`
	Email       string         `json:"email" validate:"required,email"`
	Mobile      string         `json:"mobile" validate:"omitempty,max=50"`
	DateOfBirth time.Time      `json:"date_of_birth" validate:"required"`
	ShopID      uuid.UUID      `json:"shop_id" validate:"required"`
	DoctorID    uuid.UUID      `json:"doctor_id" validate:"required"`
	Address     AddressRequest `json:"address" validate:"required"`
}

type ActivateCustomerRequest struct {
	VerificationCode string `json:"verification_code" validate:"required,len=6"`
}
