package handler

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/api/middleware"
	"github.com/hapl/fieldsales/internal/core/domain"
)

// callerIdentity returns the identity resolved by the Identity middleware and
// fails fast when the caller is anonymous or the identity lacks a role or
// email.
func callerIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.IdentityFrom(c)
	if !id.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return id, nil
}

// pathParam returns the decoded value of a path parameter. Echo routes on the
// escaped path when the request carries one and leaves its params escaped.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", domain.Invalid("Invalid " + name)
	}
	return decoded, nil
}

// pathParams decodes several path parameters in order.
func pathParams(c echo.Context, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		v, err := pathParam(c, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
