package contract

import (
	"regexp"
	"strings"

	"github.com/huangsam/contacts/schema"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^[0-9\-+\s()]*$`)
)

// ValidateContactFields checks the fields of a create or update request.
// Every field except favourite and avatar is required; email and phone are pattern-checked.
func ValidateContactFields(f schema.ContactFields) error {
	verr := &ValidationError{}

	required := []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.add(r.name, "is required")
		}
	}

	if strings.TrimSpace(f.Email) != "" && !emailPattern.MatchString(f.Email) {
		verr.add("email", "invalid email format")
	}
	if strings.TrimSpace(f.Phone) != "" && !phonePattern.MatchString(f.Phone) {
		verr.add("phone", "invalid phone number")
	}

	return verr.orNil()
}

// ValidateListParams checks paging inputs. Out-of-range pages are allowed, the store decides.
func ValidateListParams(p schema.ListParams) error {
	verr := &ValidationError{}
	if p.Page < 1 {
		verr.add("page", "must be at least 1")
	}
	if p.Limit < 1 {
		verr.add("limit", "must be positive")
	}
	return verr.orNil()
}

// ValidateID rejects an empty contact id.
func ValidateID(id string) error {
	verr := &ValidationError{}
	if strings.TrimSpace(id) == "" {
		verr.add("id", "is required")
	}
	return verr.orNil()
}
