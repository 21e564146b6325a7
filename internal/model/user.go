// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a row of the users table. ID is assigned by storage and never
// changed by the service.
type User struct {
	ID        int64     `json:"id"         db:"id"`
	Age       int       `json:"age"        db:"age"`
	FirstName string    `json:"f_name"     db:"f_name"`
	LastName  string    `json:"l_name"     db:"l_name"`
	Gender    string    `json:"gender"     db:"gender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MsgNoFieldToUpdate is the error message for an update with no field present.
const MsgNoFieldToUpdate = "No field to update"

// UserUpdate is a partial update. A nil field is left unchanged.
type UserUpdate struct {
	Age       *int    `json:"age"`
	FirstName *string `json:"f_name"`
	LastName  *string `json:"l_name"`
}

// Empty reports whether no field is present.
func (u UserUpdate) Empty() bool {
	return u.Age == nil && u.FirstName == nil && u.LastName == nil
}

// Fields lists the present fields by wire name, in storage order.
func (u UserUpdate) Fields() []string {
	var fields []string
	if u.Age != nil {
		fields = append(fields, "age")
	}
	if u.FirstName != nil {
		fields = append(fields, "f_name")
	}
	if u.LastName != nil {
		fields = append(fields, "l_name")
	}
	return fields
}

// UserResponse is the wire shape returned by the users endpoints.
type UserResponse struct {
	ID        int64     `json:"id"`
	Age       int       `json:"age"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse joins first and last name with a single space.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Age:       u.Age,
		Name:      u.FirstName + " " + u.LastName,
		Gender:    u.Gender,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
