package profile

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// ErrEmptyPatch is returned for an edit that changes nothing.
var ErrEmptyPatch = errors.New("nothing to update")

// Themes accepted in preferences.
var Themes = []interface{}{"dark", "light"}

// ValidatePatch checks an explicit profile edit.
func ValidatePatch(p domain.ProfilePatch) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}

	if err := validation.Validate(p.DisplayName, validation.By(notBlank), validation.Length(1, 100)); err != nil {
		return validation.Errors{"display_name": err}
	}
	if err := validation.Validate(p.AvatarURL, is.URL, validation.Length(0, 500)); err != nil {
		return validation.Errors{"avatar_url": err}
	}

	if d := p.Details; d != nil {
		err := validation.ValidateStruct(d,
			validation.Field(&d.Bio, validation.Length(0, 1000)),
			validation.Field(&d.Company, validation.Length(0, 200)),
			validation.Field(&d.Location, validation.Length(0, 200)),
			validation.Field(&d.Website, validation.Length(0, 500), is.URL),
		)
		if err != nil {
			return validation.Errors{"profile": err}
		}
	}

	if pr := p.Preferences; pr != nil {
		err := validation.ValidateStruct(pr,
			validation.Field(&pr.Theme, validation.Required, validation.In(Themes...)),
		)
		if err != nil {
			return validation.Errors{"preferences": err}
		}
	}

	return nil
}

func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	case string:
		s = v
	default:
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
