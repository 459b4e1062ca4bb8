// Package repository contains the data access layer. This file defines the
// error types shared across repositories so that handlers can map failures
// to HTTP responses: NotFoundError becomes 404 and BusinessError becomes 400.
package repository

import (
	"fmt"
	"strings"
)

// NotFoundError reports that an entity could not be located by the given
// lookup key.
type NotFoundError struct {
	Entity string      // entity name as shown to clients, e.g. "Médico"
	Field  string      // lookup key, e.g. "ID" or "CRM"
	Value  interface{} // value that was searched for
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s não encontrado com %s: '%v'", e.Entity, e.Field, e.Value)
}

// BusinessError reports a domain rule violation, such as a duplicate unique
// identifier or a bootstrap attempt on a non-empty database.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062). The UNIQUE KEY constraints are the authoritative uniqueness
// guard; the application-level existence checks only produce friendlier
// messages ahead of time.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
