package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID fills an empty primary key before insert so rows get the same
// UUID ids on postgres and on the sqlite test database.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *Meal) BeforeCreate(*gorm.DB) error             { newID(&m.ID); return nil }
func (f *ConfirmedFood) BeforeCreate(*gorm.DB) error    { newID(&f.ID); return nil }
func (r *Recipe) BeforeCreate(*gorm.DB) error           { newID(&r.ID); return nil }
func (s *DailyStats) BeforeCreate(*gorm.DB) error       { newID(&s.ID); return nil }
func (s *UserSettings) BeforeCreate(*gorm.DB) error     { newID(&s.ID); return nil }
func (e *ExcludedFood) BeforeCreate(*gorm.DB) error     { newID(&e.ID); return nil }
func (i *IngredientOnHand) BeforeCreate(*gorm.DB) error { newID(&i.ID); return nil }
