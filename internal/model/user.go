package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles understood by the authorization gate. The set is closed at the gate
// only; a stored user may carry any string (see DESIGN.md).
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleSalesRep = "sales-rep"
)

// DefaultRole is assigned on register when the caller supplies none.
const DefaultRole = RoleSalesRep

// User represents an account stored in the `users` collection. The
// password field holds a bcrypt hash and is never serialised to clients.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
	Role         string        `bson:"role" json:"role"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the profile subset returned by register, login and the
// profile endpoints.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public strips everything but the profile fields.
func (u *User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email, Role: u.Role}
}

// RegisterInput is the body of POST /users/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginInput is the body of POST /users/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput is the body of PUT /users/profile. All three fields are
// required.
type ProfileInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInput is the body of the admin PUT /users/:id; absent fields are
// left untouched.
type UserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UserPatch is the persisted form of a user update. PasswordHash is already
// hashed by the time it reaches the store.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
}
