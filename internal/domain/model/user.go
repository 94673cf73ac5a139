package model

type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // Not exposed
	Name           string `json:"name"`
	Email          string `json:"email"`
}

// Profile is the public view of a user.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email}
}

// UserUpdate carries the profile fields a PATCH may change; nil means
// "leave as is".
type UserUpdate struct {
	Username *string
	Name     *string
	Email    *string
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Name == nil && u.Email == nil
}
