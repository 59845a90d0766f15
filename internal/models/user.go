package models

// User читается этим сервисом, но не создается и не редактируется им
type User struct {
	BaseModel
	Fullname string   `gorm:"not null" json:"fullname"`
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Role     UserRole `gorm:"type:varchar(20);not null" json:"role"`
	IsBanned bool     `gorm:"default:false" json:"isBanned"`
	// Grade - GPA или процент, используется для ранжирования кандидатов
	Grade *float64 `json:"grade,omitempty"`
}
