package model

import "time"

// User represents a passenger account in the `users` table.  Only the
// bcrypt hash of the password is stored.
//
// Fields:
//  ID           – primary key identifier (uuid).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Name         string    // users.name
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
