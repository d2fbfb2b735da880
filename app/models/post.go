package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so violations line up
// with what the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// String renders the author as "First Last".
func (a Author) String() string {
	return a.FirstName + " " + a.LastName
}

// Render converts the post into its wire representation.
func (p *Post) Render() PostView {
	return PostView{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Author:  p.Author.String(),
		Created: p.Created,
	}
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.Created.IsZero() {
		p.Created = time.Now().UTC()
	}
}

// Apply copies the mutable fields of the input onto the post. The id and
// creation time are left untouched.
func (p *Post) Apply(in *PostInput) {
	p.Title = in.Title
	p.Content = in.Content
	if in.Author != nil {
		p.Author = Author{FirstName: in.Author.FirstName, LastName: in.Author.LastName}
	}
}

// Normalize trims surrounding whitespace so that blank values count as missing.
func (in *PostInput) Normalize() {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
	if in.Author != nil {
		in.Author.FirstName = strings.TrimSpace(in.Author.FirstName)
		in.Author.LastName = strings.TrimSpace(in.Author.LastName)
	}
}

// Validate checks the input against its schema and returns every violation.
func (in *PostInput) Validate() []FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: describe(fe)})
	}
	return out
}

// ToPost builds a new, not yet persisted, post from the input.
func (in *PostInput) ToPost() *Post {
	p := &Post{}
	p.Apply(in)
	return p
}

// fieldPath drops the root struct name from a validator namespace,
// "PostInput.author.firstName" becomes "author.firstName".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
