package http

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"propgen/domain/dto"
	domainerrors "propgen/domain/errors"
	"propgen/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const userIDKey = "user_id"

// UseJSONFieldNames makes binding errors report the json name of a field
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// respondError writes the failure envelope. Unknown errors are logged and
// answered with a generic 500 so upstream detail never reaches the client.
func respondError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.Res{
			Error:  domainerrors.ErrValidation.Message(),
			Code:   domainerrors.ErrValidation.ErrorCode(),
			Issues: issuesOf(verrs),
		})
		return
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.JSON(http.StatusBadRequest, dto.Res{
			Error:   domainerrors.ErrValidation.Message(),
			Code:    domainerrors.ErrValidation.ErrorCode(),
			Details: "malformed JSON body",
		})
		return
	}
	if appErr, ok := domainerrors.As(err); ok {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			logger.GetLogger().WithField("error", err).WithField("path", c.FullPath()).Error("request failed")
		}
		c.JSON(appErr.HTTPCode(), dto.Res{
			Error:   appErr.Message(),
			Code:    appErr.ErrorCode(),
			Details: appErr.Details(),
		})
		return
	}
	logger.GetLogger().WithField("error", err).WithField("path", c.FullPath()).Error("unhandled error")
	c.JSON(http.StatusInternalServerError, dto.Res{
		Error: domainerrors.ErrInternal.Message(),
		Code:  domainerrors.ErrInternal.ErrorCode(),
	})
}

func issuesOf(verrs validator.ValidationErrors) []dto.Issue {
	issues := make([]dto.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, dto.Issue{Field: fieldPath(fe), Message: issueMessage(fe)})
	}
	return issues
}

// fieldPath drops the top-level struct name from the namespace: "ExtractReq.url" -> "url"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	}
	return "failed the " + fe.Tag() + " rule"
}

// callerID is the authenticated user set by the auth middleware
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// requireCaller answers 401 when no authenticated user is present
func requireCaller(c *gin.Context) (string, bool) {
	id, ok := callerID(c)
	if !ok {
		respondError(c, domainerrors.ErrUnauthorized)
	}
	return id, ok
}
