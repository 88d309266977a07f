package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// Unknown fields are ignored. It writes the 400 response itself and reports
// whether decoding succeeded.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, fieldCodes map[string]fieldCode) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fc, ok := fieldCodes[fe.Field()+"."+fe.Tag()]; ok {
			writeError(w, http.StatusBadRequest, fc.code, fc.msg)
			return false
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid field: "+fe.Field())
		return false
	}
	writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
	return false
}

// fieldCode is the response for a failed "<Field>.<tag>" validation.
type fieldCode struct {
	code string
	msg  string
}
