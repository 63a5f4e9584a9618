package models

type Group struct {
	BaseModel
	Name string `json:"name" gorm:"type:varchar(150);not null"`
	// AvatarURL and GroupCode stay nil until assigned; the code never
	// changes once set.
	AvatarURL   *string     `json:"avatarURL,omitempty" gorm:"type:text"`
	GroupCode   *string     `json:"groupCode,omitempty" gorm:"type:varchar(10);uniqueIndex"`
	Memberships []UserGroup `json:"memberships,omitempty" gorm:"foreignKey:GroupID"`
}
