/**
 * @description
 * Response envelope and request decoding helpers. Every JSON response uses
 * the envelope { responseSuccessful, responseMessage, responseBody }; a
 * failed request carries responseSuccessful false and a user-facing message.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Envelope is the uniform JSON response shape.
type Envelope struct {
	ResponseSuccessful bool        `json:"responseSuccessful"`
	ResponseMessage    string      `json:"responseMessage"`
	ResponseBody       interface{} `json:"responseBody"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func respondJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func respondSuccess(w http.ResponseWriter, status int, message string, body interface{}) {
	respondJSON(w, status, Envelope{
		ResponseSuccessful: true,
		ResponseMessage:    message,
		ResponseBody:       body,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Envelope{
		ResponseSuccessful: false,
		ResponseMessage:    message,
		ResponseBody:       nil,
	})
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. The returned error message is safe to show to the user.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return errors.New("invalid value for field " + fieldErrs[0].Field())
		}
		return errors.New("invalid request body")
	}
	return nil
}
