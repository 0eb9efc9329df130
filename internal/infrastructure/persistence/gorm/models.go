// Package gorm provides GORM model definitions and repository
// implementations for the catalog and account stores.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the persisted form of an account.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time

	Recipes []RecipeModel `gorm:"foreignKey:AuthorID"`
}

// TableName overrides the table name.
func (UserModel) TableName() string {
	return "users"
}

// RecipeModel is the persisted form of a catalog entry.
type RecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	AuthorID    uuid.UUID `gorm:"type:char(36);not null;index"`
	AuthorName  string    `gorm:"type:varchar(255)"`
	Title       string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:text"`

	Ingredients StringSlice `gorm:"type:json"`
	Directions  StringSlice `gorm:"type:json"`

	PrepTimeMinutes int    `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int    `gorm:"column:cook_time_minutes;default:0"`
	Servings        int    `gorm:"default:0"`
	Difficulty      string `gorm:"type:varchar(20);index"`

	Categories StringSlice `gorm:"type:json"`
	Tags       StringSlice `gorm:"type:json"`

	AverageRating float64 `gorm:"column:average_rating;default:0;index"`
	Featured      bool    `gorm:"default:false;index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name.
func (RecipeModel) TableName() string {
	return "recipes"
}

// CategoryModel is a catalog taxonomy entry.
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time
}

// TableName overrides the table name.
func (CategoryModel) TableName() string {
	return "categories"
}

// TagModel is a free-form catalog label.
type TagModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName overrides the table name.
func (TagModel) TableName() string {
	return "tags"
}

// StringSlice stores a []string as a JSON column.
type StringSlice []string

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}
