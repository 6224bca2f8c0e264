// Package contacts is a small contact book served over HTTP whose reads go
// through a multicache registry: "contacts" (usually remote) and
// "friend-list" (usually local).
package contacts

import (
	"errors"
	"fmt"
	"strings"
)

type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Validate returns field -> message for every invalid field, or nil.
func (c Contact) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is mandatory"
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		errs["email"] = "email must be a valid address"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var ErrContactNotFound = errors.New("contact not found")

// NotFoundError carries the id that was looked up.
type NotFoundError struct{ ID int64 }

func (e *NotFoundError) Error() string { return fmt.Sprintf("could not find contact %d", e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrContactNotFound }

// MismatchedIDsError is returned by Update when the path id and the body id
// disagree.
type MismatchedIDsError struct {
	PathID, BodyID int64
}

func (e *MismatchedIDsError) Error() string {
	return fmt.Sprintf("path id %d does not match body id %d", e.PathID, e.BodyID)
}
