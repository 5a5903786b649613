// Package validator validates usecase input structs.
//
// Business code depends on the Validator interface; V10Validator backs it
// with go-playground/validator and English messages keyed by snake_case
// field names.
package validator
