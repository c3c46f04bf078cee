package api

import (
	"github.com/go-playground/validator/v10"

	domrepo "FinSignal/internal/domain/repository"
	xhttp "FinSignal/pkg/http"
)

func init() {
	if err := xhttp.RegisterValidation("timeframe", "%s must be a supported timeframe", validTimeframe); err != nil {
		panic(err)
	}
}

func validTimeframe(fl validator.FieldLevel) bool {
	_, ok := domrepo.ParseTimeframe(fl.Field().String())
	return ok
}
