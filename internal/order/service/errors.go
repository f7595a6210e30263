package service

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress = errors.New("shipping address is required")
)
