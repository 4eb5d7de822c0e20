package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/okian/replaystats/pkg/logger"
)

type submitResponse struct {
	Status    string    `json:"status"`
	JobID     string    `json:"job_id"`
	Submitted time.Time `json:"submitted"`
}

// handleSubmit handles POST /replays. The body is a JSONL capture.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, errors.New("empty body")))
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.maxReplayBytes)
	defer body.Close()

	job, err := s.deps.Submit(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		s.fail(w, r, err)
		return
	}

	s.log.Debug(r.Context(), "replay accepted", logger.String("job_id", job.ID))
	writeJSON(w, http.StatusAccepted, submitResponse{Status: "accepted", JobID: job.ID, Submitted: job.Submitted})
}
