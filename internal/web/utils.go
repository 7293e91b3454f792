package web

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// statusError carries an HTTP status alongside its cause.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Cause() error  { return e.err }
func (e *statusError) Unwrap() error { return e.err }

func withStatus(code int, err error) error {
	return &statusError{code: code, err: err}
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return http.StatusInternalServerError
}

func writeResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		logrus.WithError(err).Warn("web: write response")
	}
}

// WriteJSON marshals data as the response body.
func WriteJSON(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrap(err, "marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeResult(w, res)
}

// WriteError writes {"error": ...} with the status attached to err, or
// 500 when it carries none.
func WriteError(w http.ResponseWriter, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		logrus.WithError(merr).Errorf("web: marshal error %q", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	code := statusOf(err)
	logrus.WithField("status", code).WithError(err).Debug("web: request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeResult(w, data)
}
