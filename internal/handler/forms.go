package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/sakif/student-portal/internal/apperror"
)

// REQUEST STRUCTS:
// Every form the portal accepts is decoded into one of these. The schema tag
// is the HTML input name, which is why some of them (TaskID,
// Enrollment_Status) keep the casing the pages already use.
//
// Rules the services also enforce (task name non-empty, project title
// required) are repeated here only where the message can stay the same.

type checklistRequest struct {
	ItemIDs []string `schema:"moduleItemCheckboxInput"`
}

type createTaskRequest struct {
	Name string `schema:"taskInput"`
}

type taskScreenRequest struct {
	TaskID string `schema:"updateTaskSelection" validate:"required"`
}

type updateTaskRequest struct {
	TaskID string `schema:"TaskID" validate:"required"`
	Name   string `schema:"taskInput"`
}

type deleteTaskRequest struct {
	TaskID string `schema:"deleteTaskSelection" validate:"required"`
}

type projectRequest struct {
	Title       string `schema:"projectTitle" validate:"required,max=200"`
	Description string `schema:"projectDescription" validate:"max=5000"`
	StartTime   string `schema:"projectStartTime" validate:"max=64"`
	EndTime     string `schema:"projectEndTime" validate:"max=64"`
	TechStack   string `schema:"projectTechStack" validate:"max=500"`
}

type updateProjectRequest struct {
	ProjectID   string `schema:"projectID" validate:"required"`
	Title       string `schema:"projectTitle" validate:"required,max=200"`
	Description string `schema:"projectDescription" validate:"max=5000"`
	StartTime   string `schema:"projectStartTime" validate:"max=64"`
	EndTime     string `schema:"projectEndTime" validate:"max=64"`
	TechStack   string `schema:"projectTechStack" validate:"max=500"`
}

type projectScreenRequest struct {
	ProjectID string `schema:"updateProjectID" validate:"required"`
}

type deleteProjectRequest struct {
	ProjectID string `schema:"deleteProjectID" validate:"required"`
}

type profileRequest struct {
	Name             string `schema:"name" validate:"max=200"`
	Email            string `schema:"email" validate:"omitempty,email,max=254"`
	Major            string `schema:"major" validate:"max=200"`
	Year             string `schema:"year" validate:"max=50"`
	GPA              string `schema:"gpa" validate:"max=20"`
	Advisor          string `schema:"advisor" validate:"max=200"`
	EnrollmentStatus string `schema:"Enrollment_Status" validate:"max=100"`
	Level            string `schema:"level" validate:"max=100"`
	Program          string `schema:"program" validate:"max=200"`
	College          string `schema:"college" validate:"max=200"`
}

// normalize trims name and email before validation. Other forms keep their
// values exactly as typed.
func (p *profileRequest) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
}

// normalizer is implemented by request structs that clean their values
// before validation.
type normalizer interface {
	normalize()
}

// formDecoder is safe for concurrent use; it caches struct metadata.
var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// formValidator reports field names by their schema tag, so a message says
// "projectTitle is required" rather than "Title".
var formValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("schema"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// decodeForm parses the request form (query string and urlencoded body)
// into dst and validates it. Failures are apperror validation errors.
func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return apperror.ValidationFailed("", "malformed form data")
	}
	if err := formDecoder.Decode(dst, r.Form); err != nil {
		return apperror.ValidationFailed("", "malformed form data")
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := formValidator.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", "invalid form data")
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return apperror.ValidationFailed(verrs[0].Field(), strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
