package model

// Role is a labeled grouping that visitors may reference. Roles are seed
// data; no request flow creates them.
type Role struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;size:64;uniqueIndex"`
}

func (Role) TableName() string {
	return "roles"
}
