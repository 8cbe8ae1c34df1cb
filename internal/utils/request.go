package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParsePage reads limit/offset query parameters, clamping limit to
// [1, MaxPageLimit].
func ParsePage(c *gin.Context) (Page, error) {
	page := Page{Limit: DefaultPageLimit}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return page, BadRequest("limit must be a positive integer")
		}
		page.Limit = min(v, MaxPageLimit)
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return page, BadRequest("offset must be a non-negative integer")
		}
		page.Offset = v
	}
	return page, nil
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, BadRequest("%s must be a valid UUID", name)
	}
	return id, nil
}

// BindJSON decodes the request body into req and runs its binding tags.
// Failures come back as BadRequest errors naming the offending fields.
func BindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeField(fe))
			}
			return BadRequest("%s", strings.Join(msgs, "; "))
		}
		return BadRequest("invalid request body: %v", err)
	}
	return nil
}

func describeField(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "username":
		return field + " must be 3-30 letters, digits, underscores or dots"
	case "visibility":
		return field + " must be public, followers or private"
	}
	return fmt.Sprintf("%s failed the %q check", field, fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
