package handler

import (
	"net/http"

	"regdesk/internal/checkin/models"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
)

// queryFromRequest reads id, name and phone from the URL. Writes 400 and
// returns false when none is present.
func queryFromRequest(w http.ResponseWriter, r *http.Request) (models.Query, bool) {
	values := r.URL.Query()
	q := models.NewQuery(values.Get("id"), values.Get("name"), values.Get("phone"))
	if q.IsEmpty() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidQuery, dErrors.MsgInvalidQuery))
		return models.Query{}, false
	}
	return q, true
}
