package models

type User struct {
	BaseModel
	Email        string      `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string      `json:"-" gorm:"type:text;not null"`
	Nickname     string      `json:"nickname" gorm:"type:varchar(100);not null"`
	UserCode     string      `json:"userCode" gorm:"type:varchar(10);uniqueIndex;not null"`
	AvatarURL    *string     `json:"avatarURL,omitempty" gorm:"type:text"`
	Memberships  []UserGroup `json:"-" gorm:"foreignKey:UserID"`
}
