package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmcdole/marquee/internal/domain"
)

// entryRules are the fields an admin must supply when creating an entry
type entryRules struct {
	Title       string  `validate:"notblank"`
	Genre       string  `validate:"notblank"`
	Rating      float64 `validate:"gte=0,lte=10"`
	Year        int     `validate:"gte=0"`
	Description string  `validate:"notblank"`
	PosterURL   string  `validate:"notblank" name:"poster"`
	PlaybackURL string  `validate:"notblank" name:"video URL"`
}

// patchRules validates only the fields a patch sets
type patchRules struct {
	Title       *string  `validate:"omitempty,notblank"`
	Genre       *string  `validate:"omitempty,notblank"`
	Rating      *float64 `validate:"omitempty,gte=0,lte=10"`
	Year        *int     `validate:"omitempty,gte=0"`
	Description *string  `validate:"omitempty,notblank"`
	PosterURL   *string  `validate:"omitempty,notblank" name:"poster"`
	PlaybackURL *string  `validate:"omitempty,notblank" name:"video URL"`
}

// NewValidator returns a validator with the catalog's custom rules registered
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(fieldLabel)

	return v
}

// fieldLabel names fields in messages: the name tag, else the lowercased field name
func fieldLabel(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return name
	}
	return strings.ToLower(f.Name)
}

// ValidateEntry checks a new entry before it is sent to the server
func ValidateEntry(v *validator.Validate, e domain.Entry) error {
	return check(v, entryRules{
		Title:       e.Title,
		Genre:       e.Genre,
		Rating:      e.Rating,
		Year:        e.Year,
		Description: e.Description,
		PosterURL:   e.PosterURL,
		PlaybackURL: e.PlaybackURL,
	})
}

// ValidatePatch checks the set fields of a partial update
func ValidatePatch(v *validator.Validate, p domain.EntryPatch) error {
	if p.IsEmpty() {
		return domain.NewRequestError(domain.ErrValidationFailed, 0, "nothing to update")
	}
	return check(v, patchRules{
		Title:       p.Title,
		Genre:       p.Genre,
		Rating:      p.Rating,
		Year:        p.Year,
		Description: p.Description,
		PosterURL:   p.PosterURL,
		PlaybackURL: p.PlaybackURL,
	})
}

func check(v *validator.Validate, rules any) error {
	err := v.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewRequestError(domain.ErrValidationFailed, 0, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" "+ValidationMessage(fe))
	}
	return domain.NewRequestError(domain.ErrValidationFailed, 0, strings.Join(msgs, "; "))
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "notblank", "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", err.Param())
	default:
		return "is invalid"
	}
}
