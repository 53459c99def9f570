package customers

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a registered pharmacy customer. The related Title, Address,
// Shop and Doctor fields are hydrated on read by following the stored
// foreign keys; a dangling reference leaves the field nil.
type Customer struct {
	ID             uuid.UUID `json:"customer_id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	TitleID        uuid.UUID `json:"title_id" db:"title_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Email          string    `json:"email" db:"email"`
	Mobile         string    `json:"mobile" db:"mobile"`
	DateOfBirth    time.Time `json:"date_of_birth" db:"date_of_birth"`
	AddressID      uuid.UUID `json:"address_id" db:"address_id"`
	ShopID         uuid.UUID `json:"shop_id" db:"shop_id"`
	DoctorID       uuid.UUID `json:"doctor_id" db:"doctor_id"`
	Active         bool      `json:"active" db:"active"`
	ActivationHash string    `json:"-" db:"activation_hash"`
	CreatedOn      time.Time `json:"created_on" db:"created_on"`

	Title   *Title   `json:"title,omitempty" db:"-"`
	Address *Address `json:"address,omitempty" db:"-"`
	Shop    *Shop    `json:"shop,omitempty" db:"-"`
	Doctor  *Doctor  `json:"doctor,omitempty" db:"-"`
}

// Address is owned 1:1 by a customer and is created in the same commit.
type Address struct {
	ID        uuid.UUID `json:"address_id" db:"id"`
	Line1     string    `json:"line1" db:"line1"`
	Line2     string    `json:"line2,omitempty" db:"line2"`
	City      string    `json:"city" db:"city"`
	Postcode  string    `json:"postcode" db:"postcode"`
	CreatedOn time.Time `json:"created_on" db:"created_on"`
}

// Title is a salutation reference row (Mr, Mrs, Dr, ...).
type Title struct {
	ID   uuid.UUID `json:"title_id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Shop is the pharmacy branch the customer collects from.
type Shop struct {
	ID    uuid.UUID `json:"shop_id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Phone string    `json:"phone" db:"phone"`
}

// Doctor is the prescribing GP registered against the customer.
type Doctor struct {
	ID      uuid.UUID `json:"doctor_id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Surgery string    `json:"surgery" db:"surgery"`
}
