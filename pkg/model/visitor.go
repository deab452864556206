package model

import "fmt"

// Visitor is a person identified by a unique submitted name. It is stored
// in the users table.
type Visitor struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Username string `gorm:"column:username;size:64;uniqueIndex"`
	RoleID   *int64 `gorm:"column:role_id"`
}

func (Visitor) TableName() string {
	return "users"
}

func (v Visitor) String() string {
	return fmt.Sprintf("<Visitor %q>", v.Username)
}

// MaxNameLength is the soft cap on role names and visitor usernames
const MaxNameLength = 64
