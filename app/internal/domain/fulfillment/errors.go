package fulfillment

import "errors"

var (
	ErrUnexpectedStatus = errors.New("fulfillment provider returned an unexpected status")
	ErrEmptyResult      = errors.New("fulfillment provider returned an empty result")
)
