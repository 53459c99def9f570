package customers

import (
	"time"

	"github.com/google/uuid"
)

// Registration eligibility rules. The checks are pure over their inputs so
// they can be exercised without storage: callers load the candidate
// projection of existing customers and hand it in.

// RejectionReason identifies why a registration candidate was refused.
type RejectionReason string

const (
	RejectDuplicateEmail    RejectionReason = "DuplicateEmail"
	RejectDuplicateIdentity RejectionReason = "DuplicateIdentity"
	RejectUnderAge          RejectionReason = "UnderAge"
)

// Rejection pairs a machine-readable reason with the user-facing message.
type Rejection struct {
	Reason  RejectionReason
	Message string
}

// MinimumAge is the whole-year age a customer must have reached to register.
const MinimumAge = 18

const (
	msgDuplicateEmail    = "Email address has already been registered"
	msgDuplicateIdentity = "Customer has already been registered"
	msgUnderAge          = "Customer must be over 18 to register"
)

// Candidate is the projection of customer data the eligibility checks read.
type Candidate struct {
	Email       string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	DoctorID    uuid.UUID
}

// CheckEligibility applies the registration rules in their fixed order,
// stopping at the first category that fails: email uniqueness, then identity
// uniqueness on (first name, last name, date of birth, doctor), then minimum
// age. An empty result means the candidate may register. Email comparison is
// exact; the storage layer's unique index is the actual enforcement point and
// these checks are the fast path.
func CheckEligibility(now time.Time, candidate Candidate, existing []Candidate) []Rejection {
	for _, e := range existing {
		if e.Email == candidate.Email {
			return []Rejection{{Reason: RejectDuplicateEmail, Message: msgDuplicateEmail}}
		}
	}

	for _, e := range existing {
		if e.FirstName == candidate.FirstName &&
			e.LastName == candidate.LastName &&
			sameDate(e.DateOfBirth, candidate.DateOfBirth) &&
			e.DoctorID == candidate.DoctorID {
			return []Rejection{{Reason: RejectDuplicateIdentity, Message: msgDuplicateIdentity}}
		}
	}

	if AgeAt(candidate.DateOfBirth, now) < MinimumAge {
		return []Rejection{{Reason: RejectUnderAge, Message: msgUnderAge}}
	}

	return nil
}

// AgeAt returns the whole-year age at ref for the given date of birth:
// year difference, minus one if the anniversary has not yet passed.
func AgeAt(dob, ref time.Time) int {
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	return years
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
