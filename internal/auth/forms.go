package auth

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
)

// MsgPasswordMismatch is returned when the confirmation differs from the password.
const MsgPasswordMismatch = "Passwords do not match. Check and try again."

// Department is one entry of the sign-up department picker.
type Department struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// DefaultDepartments are the nine departments of Bolivia.
var DefaultDepartments = []Department{
	{Label: "Beni", Value: "Beni"},
	{Label: "Cochabamba", Value: "Cochabamba"},
	{Label: "Chuquisaca", Value: "Chuquisaca"},
	{Label: "La Paz", Value: "La Paz"},
	{Label: "Oruro", Value: "Oruro"},
	{Label: "Pando", Value: "Pando"},
	{Label: "Potosí", Value: "Potosi"},
	{Label: "Santa Cruz", Value: "Santa Cruz"},
	{Label: "Tarija", Value: "Tarija"},
}

// LoginForm is used by both the shopper and the admin sign-in pages.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm mirrors the sign-up page.
type RegisterForm struct {
	FirstName            string `form:"first_name" validate:"required"`
	PaternalSurname      string `form:"f_last_name" validate:"required"`
	MaternalSurname      string `form:"s_last_name"`
	Phone                string `form:"phone" validate:"required"`
	Email                string `form:"email" validate:"required,email"`
	Password             string `form:"password" validate:"required"`
	PasswordConfirmation string `form:"password_confirmation" validate:"required"`
	Department           string `form:"departamento" validate:"required,department"`
	City                 string `form:"city" validate:"required"`
	Address              string `form:"address"`
}

// ProfileForm checks an edited profile before it is saved.
type ProfileForm struct {
	FirstName  string `form:"first_name" validate:"required"`
	Email      string `form:"email" validate:"omitempty,email"`
	Department string `form:"department" validate:"omitempty,department"`
}

// ParseLoginForm reads a sign-in form. Passwords are never trimmed.
func ParseLoginForm(v url.Values) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

// ParseRegisterForm reads the sign-up form.
func ParseRegisterForm(v url.Values) RegisterForm {
	return RegisterForm{
		FirstName:            strings.TrimSpace(v.Get("first_name")),
		PaternalSurname:      strings.TrimSpace(v.Get("f_last_name")),
		MaternalSurname:      strings.TrimSpace(v.Get("s_last_name")),
		Phone:                strings.TrimSpace(v.Get("phone")),
		Email:                strings.TrimSpace(v.Get("email")),
		Password:             v.Get("password"),
		PasswordConfirmation: v.Get("password_confirmation"),
		Department:           strings.TrimSpace(v.Get("departamento")),
		City:                 strings.TrimSpace(v.Get("city")),
		Address:              strings.TrimSpace(v.Get("address")),
	}
}

// Request converts the form to the marketplace sign-up payload.
func (f RegisterForm) Request() backend.RegisterRequest {
	return backend.RegisterRequest{
		FirstName:            f.FirstName,
		PaternalSurname:      f.PaternalSurname,
		MaternalSurname:      f.MaternalSurname,
		Email:                f.Email,
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
		Phone:                f.Phone,
		Department:           f.Department,
		City:                 f.City,
		Address:              f.Address,
	}
}

// ProfileFormFrom picks the validated fields out of a profile draft.
func ProfileFormFrom(p domain.UserProfile) ProfileForm {
	return ProfileForm{
		FirstName:  strings.TrimSpace(p.FirstName),
		Email:      strings.TrimSpace(p.Email),
		Department: strings.TrimSpace(p.Department),
	}
}

// Validator checks storefront forms and reports field errors as
// *domain.ValidationError keyed by form field name.
type Validator struct {
	validate    *validator.Validate
	departments []Department
}

// NewValidator builds a validator accepting the given departments.
// An empty list falls back to DefaultDepartments.
func NewValidator(departments []Department) *Validator {
	if len(departments) == 0 {
		departments = DefaultDepartments
	}

	allowed := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		allowed[d.Value] = struct{}{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})

	return &Validator{validate: v, departments: departments}
}

// Departments returns the accepted departments in display order.
func (v *Validator) Departments() []Department {
	return v.departments
}

// Login validates a sign-in form.
func (v *Validator) Login(f LoginForm) error {
	return v.check("auth.login", f)
}

// Register validates the sign-up form, including the password confirmation.
func (v *Validator) Register(f RegisterForm) error {
	err := v.check("auth.register", f)
	if f.PasswordConfirmation != "" && f.Password != f.PasswordConfirmation {
		if err == nil {
			err = &domain.ValidationError{Op: "auth.register", Fields: map[string]string{}}
		}
		err = domain.AddFieldError(err, "password_confirmation", MsgPasswordMismatch)
	}
	return err
}

// Profile validates a profile draft before it is committed.
func (v *Validator) Profile(p domain.UserProfile) error {
	f := ProfileFormFrom(p)
	return v.check("profile.save", f)
}

func (v *Validator) check(op string, form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "form validation failed")
	}

	ve := &domain.ValidationError{Op: op, Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := ve.Fields[fe.Field()]; seen {
			continue
		}
		ve.Fields[fe.Field()] = fieldMessage(fe)
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "department":
		return "Choose a department from the list."
	default:
		return "This value is not valid."
	}
}

// FirstMessage returns one message for a form banner. A password mismatch
// wins over any other field error.
func FirstMessage(err error) string {
	fields := domain.GetValidationFields(err)
	if len(fields) == 0 {
		return domain.ErrorMessage(err)
	}
	if msg, ok := fields["password_confirmation"]; ok && msg == MsgPasswordMismatch {
		return msg
	}
	for _, name := range fieldOrder {
		if msg, ok := fields[name]; ok {
			return msg
		}
	}
	for _, msg := range fields {
		return msg
	}
	return ""
}

var fieldOrder = []string{
	"first_name", "f_last_name", "s_last_name", "phone", "email",
	"password", "password_confirmation", "departamento", "department", "city", "address",
}
