package model

import (
	"fmt"
	"time"
)

// Category is one of the six fixed storage buckets.
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryMeats   Category = "meats"
	CategoryPantry  Category = "pantry"
	CategoryFrozen  Category = "frozen"
	CategoryOther   Category = "other"
)

// Categories returns all storage categories in display order.
func Categories() []Category {
	return []Category{
		CategoryProduce,
		CategoryDairy,
		CategoryMeats,
		CategoryPantry,
		CategoryFrozen,
		CategoryOther,
	}
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryProduce, CategoryDairy, CategoryMeats, CategoryPantry, CategoryFrozen, CategoryOther:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component. It marshals as
// "YYYY-MM-DD" so the stored form carries no time-of-day or zone.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FoodItem is a single tracked inventory entry. ID and DateAdded are
// assigned on creation and never change; the remaining fields are
// replaced wholesale by edits.
type FoodItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Quantity   string    `json:"quantity"`
	ExpiryDate Date      `json:"expiry_date"`
	Category   Category  `json:"category"`
	DateAdded  time.Time `json:"date_added"`
}
