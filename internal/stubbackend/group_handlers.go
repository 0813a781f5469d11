package stubbackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/studygroup-client/models"
)

func (s *Server) ExploreGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r)
		writeJSON(w, http.StatusOK, s.data.listGroups(func(g *group) bool { return !g.members[userID] }))
	}
}

func (s *Server) MyGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r)
		writeJSON(w, http.StatusOK, s.data.listGroups(func(g *group) bool { return g.members[userID] }))
	}
}

func (s *Server) MyAdminGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r)
		writeJSON(w, http.StatusOK, s.data.listGroups(func(g *group) bool { return g.ownerID == userID }))
	}
}

func (s *Server) CreateGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.NewGroup
		if err := decodeBody(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "JSON parse error")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeFieldErrors(w, map[string][]string{"name": {"This field is required."}})
			return
		}
		writeJSON(w, http.StatusCreated, s.data.addGroup(userIDFrom(r), req))
	}
}

func (s *Server) JoinGroupHandler() http.HandlerFunc {
	return s.membershipHandler(true)
}

func (s *Server) LeaveGroupHandler() http.HandlerFunc {
	return s.membershipHandler(false)
}

func (s *Server) membershipHandler(join bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		g, exists, conflict := s.data.membership(id, userIDFrom(r), join)
		switch {
		case !exists:
			writeDetail(w, http.StatusNotFound, "Not found.")
		case conflict != "":
			writeDetail(w, http.StatusBadRequest, conflict)
		default:
			writeJSON(w, http.StatusOK, g)
		}
	}
}
