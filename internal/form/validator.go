package form

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

const (
	// custom validation tags & texts
	positiveTag   = "positive"
	positiveText  = "{0} must be greater than zero"
	dayTag        = "day"
	dayText       = "{0} must be a valid date"
	notBlankTag   = "notblank"
	notBlankText  = "{0} cannot be blank"
	dayOnOrBefore = "dayonorbefore"

	requiredText  = "{0} is required"
	passwordsText = "Passwords do not match"
	orderedText   = "{0} must be on or before {1}"
	notBeforeText = "{0} must not be before {1}"
)

// built-in tags whose default English text is replaced
var overriddenTags = map[string]string{
	"required":         requiredText,
	"required_without": requiredText,
	"eqfield":          passwordsText,
}

// Validator checks drafts before anything is sent to the backend and renders
// user-facing English messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator builds a validator with the portal's custom tags and messages.
func NewValidator() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Messages name fields by their label, falling back to the JSON name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(positiveTag, positiveValidation)
	_ = validate.RegisterValidation(dayTag, dayValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(dayOnOrBefore, dayOnOrBeforeValidation)

	v := &Validator{validate: validate, translator: translator}
	v.registerTranslation(positiveTag, positiveText, false)
	v.registerTranslation(dayTag, dayText, false)
	v.registerTranslation(notBlankTag, notBlankText, false)
	for tag, text := range overriddenTags {
		v.registerTranslation(tag, text, true)
	}
	return v
}

// Engine exposes the underlying validator for decoding backend payloads.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns a VALIDATION_ERROR whose message is the
// first failure and whose details map JSON field names to messages.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	root := reflect.TypeOf(s)
	for root.Kind() == reflect.Ptr {
		root = root.Elem()
	}
	details := make(map[string]string, len(fieldErrs))
	first := ""
	for _, fe := range fieldErrs {
		msg := v.message(root, fe)
		key := jsonName(root, fe.StructField())
		if _, exists := details[key]; !exists {
			details[key] = msg
		}
		if first == "" {
			first = msg
		}
	}
	return appErrors.Validation(first, details)
}

func (v *Validator) message(root reflect.Type, fe validator.FieldError) string {
	switch fe.Tag() {
	case dayOnOrBefore, "ltefield":
		return strings.NewReplacer("{0}", fe.Field(), "{1}", labelOf(root, fe.Param())).Replace(orderedText)
	case "gtefield":
		return strings.NewReplacer("{0}", fe.Field(), "{1}", labelOf(root, fe.Param())).Replace(notBeforeText)
	}
	return fe.Translate(v.translator)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func labelOf(root reflect.Type, field string) string {
	if root.Kind() != reflect.Struct {
		return field
	}
	if f, ok := root.FieldByName(field); ok {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
	}
	return field
}

func jsonName(root reflect.Type, field string) string {
	if root.Kind() != reflect.Struct {
		return field
	}
	if f, ok := root.FieldByName(field); ok {
		if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
	}
	return field
}

// Custom validators

func positiveValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0
	case reflect.Float32, reflect.Float64:
		return field.Float() > 0
	}
	return false
}

func dayValidation(fl validator.FieldLevel) bool {
	_, ok := models.ParseDay(fl.Field().String())
	return ok
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// dayOnOrBeforeValidation compares two calendar-day strings. Unparseable
// values are left to the day tag.
func dayOnOrBeforeValidation(fl validator.FieldLevel) bool {
	other, kind, _, found := fl.GetStructFieldOK2()
	if !found || kind != reflect.String {
		return false
	}
	start, okStart := models.ParseDay(fl.Field().String())
	end, okEnd := models.ParseDay(other.String())
	if !okStart || !okEnd {
		return true
	}
	return !start.After(end)
}

// FieldMessage returns the message reported for a JSON field, if any.
func FieldMessage(err error, field string) string {
	e := appErrors.FromError(err)
	if e == nil || e.Details == nil {
		return ""
	}
	return e.Details[field]
}
