package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperrors.ValidationError("Invalid JSON body").WithCause(err)
	}
	return nil
}
