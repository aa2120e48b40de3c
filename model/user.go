package model

import (
	"time"

	"github.com/goliatone/go-storefront-cache/document"
)

// User is a storefront account profile.
type User struct {
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         *Address  `json:"address,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Address is a postal address attached to a user.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	if u.Address != nil {
		a := *u.Address
		out.Address = &a
	}
	return out
}

// UserCodec converts user documents.
var UserCodec document.Codec[User] = document.CodecFuncs[User]{
	DecodeFn: DecodeUser,
	EncodeFn: EncodeUser,
}

func DecodeUser(id string, f document.Fields) User {
	u := User{
		UserID:          document.String(f, "userId"),
		Name:            document.String(f, "name"),
		Email:           document.String(f, "email"),
		Phone:           document.String(f, "phone"),
		Address:         DecodeAddress(document.Map(f, "address")),
		ProfileImageURL: document.String(f, "profileImageUrl"),
		CreatedAt:       document.Time(f, "createdAt"),
	}
	if u.UserID == "" {
		u.UserID = id
	}
	return u
}

func EncodeUser(u User) document.Fields {
	f := document.Fields{
		"userId":          u.UserID,
		"name":            u.Name,
		"email":           u.Email,
		"phone":           u.Phone,
		"profileImageUrl": u.ProfileImageURL,
		"createdAt":       u.CreatedAt,
	}
	if u.Address != nil {
		f["address"] = EncodeAddress(*u.Address)
	}
	return f
}

// DecodeAddress returns nil for a nil document.
func DecodeAddress(f document.Fields) *Address {
	if f == nil {
		return nil
	}
	return &Address{
		Street:  document.String(f, "street"),
		City:    document.String(f, "city"),
		State:   document.String(f, "state"),
		ZipCode: document.String(f, "zipCode"),
		Country: document.String(f, "country"),
	}
}

func EncodeAddress(a Address) document.Fields {
	return document.Fields{
		"street":  a.Street,
		"city":    a.City,
		"state":   a.State,
		"zipCode": a.ZipCode,
		"country": a.Country,
	}
}
