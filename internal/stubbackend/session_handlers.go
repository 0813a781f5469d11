package stubbackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/studygroup-client/models"
)

const permissionDenied = "You do not have permission to perform this action."

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter models.SessionFilter
		if raw := r.URL.Query().Get("group"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeFieldErrors(w, map[string][]string{"group": {"Enter a whole number."}})
				return
			}
			filter.GroupID = id
		}
		filter.Date = r.URL.Query().Get("date")
		writeJSON(w, http.StatusOK, s.data.listSessions(userIDFrom(r), filter))
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.visibleSession(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.NewSession
		if err := decodeBody(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "JSON parse error")
			return
		}

		fields := map[string][]string{}
		if req.GroupID == 0 {
			fields["group"] = []string{"This field is required."}
		}
		if strings.TrimSpace(req.Title) == "" {
			fields["title"] = []string{"This field is required."}
		}
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}

		userID := userIDFrom(r)
		member, exists := s.data.isMember(req.GroupID, userID)
		if !exists {
			writeFieldErrors(w, map[string][]string{"group": {"Invalid pk \"" + strconv.FormatInt(req.GroupID, 10) + "\" - object does not exist."}})
			return
		}
		if !member {
			writeDetail(w, http.StatusForbidden, permissionDenied)
			return
		}

		user, _ := s.data.user(userID)
		writeJSON(w, http.StatusCreated, s.data.addSession(user.Username, req))
	}
}

// DeleteSessionHandler only lets the owner of the session's group delete it.
func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.visibleSession(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		if !s.data.isOwner(session.GroupID, userIDFrom(r)) {
			writeDetail(w, http.StatusForbidden, permissionDenied)
			return
		}
		s.data.deleteSession(session.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// visibleSession looks up the session in the path if the caller belongs to its group.
func (s *Server) visibleSession(r *http.Request) (models.Session, bool) {
	id, ok := pathID(r)
	if !ok {
		return models.Session{}, false
	}
	session, ok := s.data.session(id)
	if !ok {
		return models.Session{}, false
	}
	if member, _ := s.data.isMember(session.GroupID, userIDFrom(r)); !member {
		return models.Session{}, false
	}
	return session, true
}
