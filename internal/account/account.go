package account

import (
	"regexp"
	"time"

	"github.com/wichananm65/misdis-backend/internal/validation"
)

type Role string

const (
	RoleTutor   Role = "Tutor"
	RoleStudent Role = "Student"
)

var Roles = []Role{RoleTutor, RoleStudent}

type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderNonBinary   Gender = "None-Binary"
	GenderUnspecified Gender = "Prefer Not To Specify"
	GenderOthers      Gender = "Others"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderUnspecified, GenderOthers}

// DateLayout is the wire and storage format of a date of birth.
const DateLayout = "2006-01-02"

var contactPattern = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

type User struct {
	ID                         int        `json:"id"`
	FirstName                  string     `json:"first_name"`
	MiddleName                 *string    `json:"middle_name"`
	LastName                   string     `json:"last_name"`
	DOB                        string     `json:"dob"`
	Email                      string     `json:"email"`
	Password                   string     `json:"-"`
	Position                   *string    `json:"position"`
	Role                       Role       `json:"role"`
	Gender                     Gender     `json:"gender"`
	Contact                    string     `json:"contact"`
	City                       *string    `json:"city"`
	CityNe                     *string    `json:"city_ne"`
	VerificationLinkExpiration *time.Time `json:"verification_link_expiration"`
	IsVerified                 bool       `json:"is_verified"`
	IsActive                   bool       `json:"is_active"`
}

// UserCreate is the account creation payload.
type UserCreate struct {
	FirstName                  string     `json:"first_name" validate:"required,max=64"`
	MiddleName                 *string    `json:"middle_name" validate:"omitnil,max=64"`
	LastName                   string     `json:"last_name" validate:"required,max=64"`
	DOB                        string     `json:"dob" validate:"required,datetime=2006-01-02"`
	Email                      string     `json:"email" validate:"required,email"`
	Password                   string     `json:"password" validate:"required,min=8,max=72"`
	Position                   *string    `json:"position" validate:"omitnil,max=255"`
	Role                       Role       `json:"role" validate:"required,role"`
	Gender                     Gender     `json:"gender" validate:"required,gender"`
	Contact                    string     `json:"contact" validate:"required,contact"`
	City                       *string    `json:"city" validate:"omitnil,max=100"`
	CityNe                     *string    `json:"city_ne" validate:"omitnil,max=125"`
	VerificationLinkExpiration *time.Time `json:"verification_link_expiration"`
	IsVerified                 *bool      `json:"is_verified"`
	IsActive                   *bool      `json:"is_active"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Rules returns the custom validation tags used by UserCreate.
func Rules() []validation.Rule {
	return []validation.Rule{
		{Tag: "role", Message: "Must be one of: Tutor, Student", Check: func(v string) bool {
			for _, r := range Roles {
				if string(r) == v {
					return true
				}
			}
			return false
		}},
		{Tag: "gender", Message: "Must be one of: Male, Female, None-Binary, Prefer Not To Specify, Others", Check: func(v string) bool {
			for _, g := range Genders {
				if string(g) == v {
					return true
				}
			}
			return false
		}},
		{Tag: "contact", Message: "Must be a phone number of 8 to 15 digits, optionally prefixed with +", Check: contactPattern.MatchString},
	}
}
