package leads

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s()+-]+$`)
)

// FieldErrors maps a form field name to the one message describing its
// first violated rule.
type FieldErrors map[string]string

// Error implements error with a stable, field-sorted summary.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return "leads: invalid submission (" + strings.Join(parts, "; ") + ")"
}

// messages keyed by "<field>.<tag>".
var fieldMessages = map[string]string{
	"name.min":             "Name must be at least 2 characters",
	"name.max":             "Name must be less than 100 characters",
	"name.leadname":        "Name can only contain letters, spaces, hyphens, and apostrophes",
	"email.email":          "Please enter a valid email address",
	"email.max":            "Email must be less than 255 characters",
	"phone.phonechars":     "Phone can only contain numbers and standard formatting characters",
	"phone.min":            "Phone number must be at least 10 digits",
	"city.required":        "Please select a city",
	"city.servedcity":      "Please select a city from the list",
	"projectType.required": "Please select a project type",
	"projectType.projtype": "Please select a valid project type",
	"message.max":          "Message must be less than 1000 characters",
	"consent.required":     "You must accept the terms and conditions to continue",
}

// Tag order is rule order: validator reports only the first failing tag
// of each field.
type submissionInput struct {
	Name        string `json:"name" validate:"min=2,max=100,leadname"`
	Email       string `json:"email" validate:"email,max=255"`
	Phone       string `json:"phone" validate:"phonechars,min=10"`
	City        string `json:"city" validate:"required,servedcity"`
	ProjectType string `json:"projectType" validate:"required,projtype"`
	Message     string `json:"message" validate:"max=1000"`
	Consent     bool   `json:"consent" validate:"required"`
}

// Validator checks raw submissions against the lead form rules.
type Validator struct {
	validate *validator.Validate
	cities   map[string]struct{}
}

// NewValidator builds a Validator accepting ServedCities plus extraCities.
func NewValidator(extraCities ...string) *Validator {
	v := &Validator{
		validate: validator.New(),
		cities:   make(map[string]struct{}, len(ServedCities)+len(extraCities)),
	}
	for _, city := range ServedCities {
		v.cities[city] = struct{}{}
	}
	for _, city := range extraCities {
		if city = strings.TrimSpace(city); city != "" {
			v.cities[city] = struct{}{}
		}
	}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v.validate, "leadname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "phonechars", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "servedcity", func(fl validator.FieldLevel) bool {
		_, ok := v.cities[fl.Field().String()]
		return ok
	})
	mustRegister(v.validate, "projtype", func(fl validator.FieldLevel) bool {
		return ProjectType(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("leads: register validation " + tag + ": " + err.Error())
	}
}

var defaultValidator = NewValidator()

// Validate checks raw with the default city list. See Validator.Validate.
func Validate(raw RawSubmission) (*Submission, FieldErrors) {
	return defaultValidator.Validate(raw)
}

// Validate returns a normalized Submission, or the per-field errors when any
// rule fails. Every field is checked independently. It has no side effects.
func (v *Validator) Validate(raw RawSubmission) (*Submission, FieldErrors) {
	input := submissionInput{
		Name:        strings.TrimSpace(raw.Name),
		Email:       strings.TrimSpace(raw.Email),
		Phone:       strings.TrimSpace(raw.Phone),
		City:        strings.TrimSpace(raw.City),
		ProjectType: strings.TrimSpace(raw.ProjectType),
		Message:     strings.TrimSpace(raw.Message),
		Consent:     raw.Consent,
	}

	if err := v.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, FieldErrors{"form": "Invalid submission"}
		}
		out := make(FieldErrors, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			if _, seen := out[field]; seen {
				continue
			}
			msg, ok := fieldMessages[field+"."+fe.Tag()]
			if !ok {
				msg = "Invalid value"
			}
			out[field] = msg
		}
		return nil, out
	}

	return &Submission{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		City:        input.City,
		ProjectType: ProjectType(input.ProjectType),
		Message:     input.Message,
		Consent:     true,
		UTMSource:   raw.UTMSource,
		UTMMedium:   raw.UTMMedium,
		UTMCampaign: raw.UTMCampaign,
		UTMContent:  raw.UTMContent,
		UTMTerm:     raw.UTMTerm,
		Status:      DefaultStatus,
	}, nil
}

// ValidEmail reports whether email passes the same shape rule as the form.
func (v *Validator) ValidEmail(email string) bool {
	return v.validate.Var(strings.TrimSpace(email), "required,email,max=255") == nil
}

// ValidEmail checks email with the default validator.
func ValidEmail(email string) bool {
	return defaultValidator.ValidEmail(email)
}
