package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hay-kot/taskdeck/internal/core/validate"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

var validationOnce sync.Once

// registerValidation makes validator report fields by their JSON names.
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into dst and answers 400 when it is malformed
// or fails its binding rules.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, ok := fields[fe.Field()]; !ok {
				fields[fe.Field()] = describe(fe)
			}
		}
		validationFailed(c, fields)
		return false
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed request body", "error": err.Error()})
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func validationFailed(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": fields})
}

// invalid answers 400 with the field errors of a domain validation error.
func invalid(c *gin.Context, err error) {
	fields := validate.FieldMap(err)
	if fields == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	validationFailed(c, fields)
}

// storeError maps store sentinels onto status codes.
func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stores.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, stores.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"message": "Username is already taken",
			"errors":  gin.H{"username": stores.ErrUsernameTaken.Error()},
		})
	case errors.Is(err, stores.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"message": "Email is already in use",
			"errors":  gin.H{"email": stores.ErrEmailTaken.Error()},
		})
	default:
		s.internalError(c, err)
	}
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error().Ctx(c.Request.Context()).Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// adminOK wraps admin responses in the {success, data} envelope.
func adminOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
