// Package profile maps account profiles between the marketplace's field
// names and the storefront's, and drives the view/edit flow of the profile
// page.
package profile

import (
	"errors"
	"strings"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/orders"
	"github.com/dukerupert/artesania/internal/payload"
)

// DefaultPicture is used when the account has no photo.
const DefaultPicture = "https://www.vecteezy.com/png/24983914-simple-user-default-icon"

// Edit form field names.
const (
	FieldFirstName       = "first_name"
	FieldPaternalSurname = "paternal_last_name"
	FieldMaternalSurname = "maternal_last_name"
	FieldDepartment      = "department"
	FieldCity            = "city"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldAddress         = "address"
)

// Fields lists the editable fields in form order.
var Fields = []string{
	FieldFirstName, FieldPaternalSurname, FieldMaternalSurname,
	FieldDepartment, FieldCity, FieldPhone, FieldEmail, FieldAddress,
}

var ErrUnknownField = errors.New("unknown profile field")

// Normalizer maps profile payloads onto domain.UserProfile.
type Normalizer struct {
	DefaultPicture string
}

// Normalize reads a profile payload, unwrapping a top-level "data" object.
func (n Normalizer) Normalize(v any) domain.UserProfile {
	data, _ := payload.Object(payload.Unwrap(v, "data"))

	p := domain.UserProfile{
		ID:              payload.Text(data["id"]),
		FirstName:       payload.Text(data["first_name"]),
		PaternalSurname: payload.Text(data["f_last_name"]),
		MaternalSurname: payload.Text(data["s_last_name"]),
		Department:      payload.Text(data["departamento"]),
		City:            payload.Text(data["city"]),
		Phone:           payload.Text(data["phone"]),
		Email:           payload.Text(data["email"]),
		Address:         payload.Text(data["address"]),
		Picture:         payload.FirstText(data, "photo_url"),
		CreatedAt:       payload.Text(data["created_at"]),
		Orders:          orders.NormalizeList(payload.List(data["orders"])),
	}
	if p.Picture == "" {
		p.Picture = n.picture()
	}
	if count, ok := payload.Int(data["orders_count"]); ok && count > 0 {
		p.OrdersCount = count
	}
	return p
}

func (n Normalizer) picture() string {
	if n.DefaultPicture != "" {
		return n.DefaultPicture
	}
	return DefaultPicture
}

// Normalize uses the default profile picture.
func Normalize(v any) domain.UserProfile {
	return Normalizer{}.Normalize(v)
}

// ToPayload maps the editable fields back to the marketplace's names.
func ToPayload(p domain.UserProfile) map[string]any {
	return map[string]any{
		"first_name":   p.FirstName,
		"f_last_name":  p.PaternalSurname,
		"s_last_name":  p.MaternalSurname,
		"departamento": p.Department,
		"city":         p.City,
		"phone":        p.Phone,
		"email":        p.Email,
		"address":      p.Address,
	}
}

// Field returns the value of an edit form field.
func Field(p domain.UserProfile, name string) (string, error) {
	ptr := fieldPtr(&p, name)
	if ptr == nil {
		return "", ErrUnknownField
	}
	return *ptr, nil
}

// ApplyField sets one edit form field on p.
func ApplyField(p *domain.UserProfile, name, value string) error {
	ptr := fieldPtr(p, name)
	if ptr == nil {
		return ErrUnknownField
	}
	*ptr = strings.TrimSpace(value)
	return nil
}

// FormValues returns the edit form values of p keyed by field name.
func FormValues(p domain.UserProfile) map[string]string {
	out := make(map[string]string, len(Fields))
	for _, name := range Fields {
		out[name] = *fieldPtr(&p, name)
	}
	return out
}

func fieldPtr(p *domain.UserProfile, name string) *string {
	switch name {
	case FieldFirstName:
		return &p.FirstName
	case FieldPaternalSurname:
		return &p.PaternalSurname
	case FieldMaternalSurname:
		return &p.MaternalSurname
	case FieldDepartment:
		return &p.Department
	case FieldCity:
		return &p.City
	case FieldPhone:
		return &p.Phone
	case FieldEmail:
		return &p.Email
	case FieldAddress:
		return &p.Address
	default:
		return nil
	}
}
