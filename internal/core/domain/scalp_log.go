package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidLog  = errors.New("invalid scalp log data")
	ErrLogNotFound = errors.New("scalp log not found")
)

// FieldError describes which field of a log failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidLog
}

type SymptomTiming struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type ProductsUsed struct {
	// CatalogProducts are picked from the fixed product list.
	CatalogProducts []string `json:"catalog_products"`
	// OtherProducts is free text.
	OtherProducts string `json:"other_products"`
}

type HaircareRoutine struct {
	Hairstyle  string `json:"hairstyle"`
	WasWashDay bool   `json:"was_wash_day"`
}

type DietLifestyle struct {
	Meals           string `json:"meals"`
	ConsumedAlcohol bool   `json:"consumed_alcohol"`
	HighSugarIntake bool   `json:"high_sugar_intake"`
}

// ScalpLog is one daily log entry. It is never modified after creation.
type ScalpLog struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Symptoms        Symptoms        `json:"symptoms"`
	SymptomTiming   SymptomTiming   `json:"symptom_timing"`
	ScalpPhotos     []string        `json:"scalp_photos"`
	ProductsUsed    ProductsUsed    `json:"products_used"`
	HaircareRoutine HaircareRoutine `json:"haircare_routine"`
	StressLevel     int             `json:"stress_level"`
	DietLifestyle   DietLifestyle   `json:"diet_lifestyle"`
	PersonalNotes   string          `json:"personal_notes"`

	CreatedAt time.Time `json:"created_at"`
}

type NewScalpLogParams struct {
	UserID          string
	Symptoms        Symptoms
	SymptomTiming   SymptomTiming
	PhotoURL        string
	ProductsUsed    ProductsUsed
	HaircareRoutine HaircareRoutine
	StressLevel     int
	DietLifestyle   DietLifestyle
	PersonalNotes   string
}

func NewScalpLog(p NewScalpLogParams) (*ScalpLog, error) {
	log := &ScalpLog{
		UserID:          strings.TrimSpace(p.UserID),
		Symptoms:        p.Symptoms.Normalized(),
		SymptomTiming:   p.SymptomTiming,
		ScalpPhotos:     []string{},
		ProductsUsed:    normalizeProducts(p.ProductsUsed),
		HaircareRoutine: p.HaircareRoutine,
		StressLevel:     p.StressLevel,
		DietLifestyle:   p.DietLifestyle,
		PersonalNotes:   p.PersonalNotes,
		CreatedAt:       time.Now().UTC(),
	}
	if p.PhotoURL != "" {
		log.ScalpPhotos = []string{p.PhotoURL}
	}

	if err := p.Symptoms.Validate(); err != nil {
		return nil, err
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	return log, nil
}

func (l *ScalpLog) Validate() error {
	if strings.TrimSpace(l.UserID) == "" {
		return &FieldError{Field: "user_id", Reason: "is required"}
	}
	if err := l.Symptoms.Validate(); err != nil {
		return err
	}
	if l.StressLevel < MinStress || l.StressLevel > MaxStress {
		return &FieldError{Field: "stress_level", Reason: "must be between 1 and 10"}
	}
	return nil
}

// normalizeProducts drops blank catalog picks and whitespace-only free text.
// Non-blank free text is kept exactly as typed.
func normalizeProducts(p ProductsUsed) ProductsUsed {
	out := ProductsUsed{CatalogProducts: make([]string, 0, len(p.CatalogProducts))}
	for _, name := range p.CatalogProducts {
		if strings.TrimSpace(name) != "" {
			out.CatalogProducts = append(out.CatalogProducts, name)
		}
	}
	if strings.TrimSpace(p.OtherProducts) != "" {
		out.OtherProducts = p.OtherProducts
	}
	return out
}
