package models

// User represents a registered account. The password column always holds
// a bcrypt digest, never the plaintext.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(50);not null"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(50);not null"`
	Password string `json:"-" gorm:"type:varchar(60);not null"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (User) TableName() string {
	return "users"
}
