package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫不足。どの商品が・いくつ残っていて・いくつ要求されたか、を持つ。
// メッセージはそのまま画面に出せる形にしてある。
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
		e.Name, e.Available, e.Requested)
}

func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var se *InsufficientStockError
	ok := errors.As(err, &se)
	return se, ok
}
