package rpc

import (
	"fmt"

	"h3routeserv/pkg/apperror"
)

func requireNonEmpty(value, field string) error {
	if value == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, fmt.Sprintf("%s is required", field), field)
	}
	return nil
}

func requireNonEmptyCells(cells []uint64, field string) error {
	if len(cells) == 0 {
		return apperror.NewWithField(apperror.CodeEmptySelection, fmt.Sprintf("%s must contain at least one cell", field), field)
	}
	return nil
}
