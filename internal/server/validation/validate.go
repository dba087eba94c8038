// Package validation is the pre-commit gate for every write: field rules are
// checked here before any repository is touched, so a failure guarantees no
// state change. Results are field-qualified *common.ValidationError values,
// never panics.
package validation

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// local-part "@" domain-with-a-dot
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 7

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email checks the normalized address shape.
func Email(email string) error {
	if !emailRe.MatchString(NormalizeEmail(email)) {
		return common.NewValidationError("email", "is invalid")
	}
	return nil
}

// Password enforces the minimum length and forbids the literal substring
// "password" in any case.
func Password(password string) error {
	if len(password) < minPasswordLength {
		return common.NewValidationError("password", "must be at least 7 characters")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return common.NewValidationError("password", `must not contain "password"`)
	}
	return nil
}

// Name requires a non-empty value after trimming.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "must not be empty")
	}
	return nil
}

// Description requires a non-empty task description after trimming.
func Description(description string) error {
	if strings.TrimSpace(description) == "" {
		return common.NewValidationError("description", "must not be empty")
	}
	return nil
}

// TaskInput is a validated task create/patch payload. Nil fields were absent.
type TaskInput struct {
	Description *string
	Completed   *bool
}

// TaskCreate validates a decoded JSON body for task creation. Unknown keys
// are rejected wholesale, description is mandatory, and completed must be a
// JSON boolean (strings are not coerced).
func TaskCreate(body map[string]any) (*TaskInput, error) {
	in, err := taskFields(body)
	if err != nil {
		return nil, err
	}
	if in.Description == nil {
		return nil, common.NewValidationError("description", "is required")
	}
	return in, nil
}

// TaskPatch validates a decoded JSON body for a task update. An empty patch
// is rejected; unknown keys reject the whole patch with no partial effect.
func TaskPatch(body map[string]any) (*TaskInput, error) {
	in, err := taskFields(body)
	if err != nil {
		return nil, err
	}
	if in.Description == nil && in.Completed == nil {
		return nil, common.NewValidationError("updates", "no valid fields to update")
	}
	return in, nil
}

func taskFields(body map[string]any) (*TaskInput, error) {
	in := &TaskInput{}
	for key, value := range body {
		switch key {
		case "description":
			s, ok := value.(string)
			if !ok {
				return nil, common.NewValidationError("description", "must be a string")
			}
			if err := Description(s); err != nil {
				return nil, err
			}
			s = strings.TrimSpace(s)
			in.Description = &s
		case "completed":
			b, ok := value.(bool)
			if !ok {
				return nil, common.NewValidationError("completed", "must be a boolean")
			}
			in.Completed = &b
		default:
			return nil, common.NewValidationError(key, "is not an allowed field")
		}
	}
	return in, nil
}

// UserPatch is a validated profile update. Nil fields were absent.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// UserPatchBody validates a decoded JSON body for a profile update. Allowed
// keys are name, email and password; anything else rejects the whole patch.
func UserPatchBody(body map[string]any) (*UserPatch, error) {
	if len(body) == 0 {
		return nil, common.NewValidationError("updates", "no valid fields to update")
	}

	patch := &UserPatch{}
	for key, value := range body {
		s, ok := value.(string)
		if !ok {
			return nil, common.NewValidationError(key, "must be a string")
		}
		switch key {
		case "name":
			if err := Name(s); err != nil {
				return nil, err
			}
			trimmed := strings.TrimSpace(s)
			patch.Name = &trimmed
		case "email":
			if err := Email(s); err != nil {
				return nil, err
			}
			normalized := NormalizeEmail(s)
			patch.Email = &normalized
		case "password":
			if err := Password(s); err != nil {
				return nil, err
			}
			patch.Password = &s
		default:
			return nil, common.NewValidationError(key, "is not an allowed field")
		}
	}
	return patch, nil
}

// Signup validates the three mandatory signup fields and returns the
// trimmed name and normalized email.
func Signup(name, email, password string) (string, string, error) {
	if err := Name(name); err != nil {
		return "", "", err
	}
	if err := Email(email); err != nil {
		return "", "", err
	}
	if err := Password(password); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(name), NormalizeEmail(email), nil
}
