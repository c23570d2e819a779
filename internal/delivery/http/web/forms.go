package web

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-todo-web/internal/models"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

const (
	fieldTitle   = "title"
	fieldDueDate = "due_date"
	fieldIsDone  = "is_done"
	// fieldForm collects errors that don't belong to a single field.
	fieldForm = "__all__"
)

type taskForm struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description"`
	// IsDone is a checkbox: browsers post "on" unless the input has a value.
	IsDone  string `form:"is_done"`
	DueDate string `form:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// formView is what the templates render: the submitted or stored values
// plus field-level error messages.
type formView struct {
	Title       string
	Description string
	IsDone      bool
	DueDate     string
	Errors      map[string]string
}

func (f *formView) Valid() bool {
	return len(f.Errors) == 0
}

func (f *formView) addError(field, message string) {
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	if _, exists := f.Errors[field]; !exists {
		f.Errors[field] = message
	}
}

func newTaskFormView(task *models.Task) *formView {
	return &formView{
		Title:       task.Title,
		Description: task.Description,
		IsDone:      task.IsDone,
		DueDate:     models.FormatDate(task.DueDate),
	}
}

// bindTaskForm binds and validates the posted task form. The returned
// view always carries the submitted values so an invalid form can be
// rendered again.
func bindTaskForm(c *gin.Context) *formView {
	var form taskForm
	err := c.ShouldBind(&form)

	view := &formView{
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
		DueDate:     strings.TrimSpace(form.DueDate),
	}

	isDone, ok := parseCheckbox(form.IsDone)
	if !ok {
		view.addError(fieldIsDone, "Enter a valid value.")
	}
	view.IsDone = isDone

	if err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			view.addError(fieldForm, "Submitted data is malformed.")
			return view
		}
		for _, fieldErr := range validationErrs {
			addFieldError(view, fieldErr)
		}
	}

	if view.Title == "" {
		view.addError(fieldTitle, "This field is required.")
	}
	if _, err := models.ParseDate(view.DueDate); err != nil {
		view.addError(fieldDueDate, "Enter a valid date.")
	}
	return view
}

// parseCheckbox accepts the values a checkbox or a script may post.
// A missing field means unchecked.
func parseCheckbox(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "off":
		return false, true
	case "on":
		return true, true
	}
	checked, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, false
	}
	return checked, true
}

func addFieldError(view *formView, fieldErr validator.FieldError) {
	switch fieldErr.Field() {
	case "Title":
		if fieldErr.Tag() == "max" {
			view.addError(fieldTitle, fmt.Sprintf(
				"Ensure this value has at most %d characters (it has %d).",
				services.MaxTitleLength, utf8.RuneCountInString(view.Title)))
			return
		}
		view.addError(fieldTitle, "This field is required.")
	case "DueDate":
		view.addError(fieldDueDate, "Enter a valid date.")
	default:
		view.addError(fieldForm, "Submitted data is invalid.")
	}
}

func (f *formView) createParams() services.CreateTaskParams {
	dueDate, _ := models.ParseDate(f.DueDate)
	return services.CreateTaskParams{
		Title:       f.Title,
		Description: f.Description,
		IsDone:      f.IsDone,
		DueDate:     dueDate,
	}
}

func (f *formView) updateParams(id string) services.UpdateTaskParams {
	dueDate, _ := models.ParseDate(f.DueDate)
	return services.UpdateTaskParams{
		ID:           id,
		Title:        &f.Title,
		Description:  &f.Description,
		IsDone:       &f.IsDone,
		DueDate:      dueDate,
		ClearDueDate: dueDate == nil,
	}
}
