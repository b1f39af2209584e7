// Package core defines the fundamental types and errors for HiBuddy.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Schedule errors
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSlotNotFound     = errors.New("slot not found")

	// Storage errors
	ErrRecordNotFound = errors.New("record not found")

	// AI service errors
	ErrLLMUnavailable  = errors.New("LLM service unavailable")
	ErrSearchFailed    = errors.New("search request failed")
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// Validation errors
	ErrMissingRequired = errors.New("missing required field")
)
