package utils

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)
	registerOnce    sync.Once
	registerErr     error
)

// ValidUsername reports whether s is 3-30 characters of letters, digits,
// underscores and dots.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// RegisterValidators installs the custom binding tags used by request DTOs
// ("username", "visibility") on gin's validator engine.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidUsername(fl.Field().String())
		}); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "", "public", "followers", "private":
				return true
			}
			return false
		})
	})
	return registerErr
}
