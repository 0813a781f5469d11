package stubbackend

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "JSON parse error")
			return
		}

		fields := map[string][]string{}
		if strings.TrimSpace(req.Username) == "" {
			fields["username"] = append(fields["username"], "This field is required.")
		}
		if req.Email == "" {
			fields["email"] = append(fields["email"], "This field is required.")
		} else if _, err := mail.ParseAddress(req.Email); err != nil {
			fields["email"] = append(fields["email"], "Enter a valid email address.")
		}
		if req.Password == "" {
			fields["password"] = append(fields["password"], "This field is required.")
		}
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}

		user, fields, err := s.CreateUser(req.Username, req.Email, req.Password)
		if err != nil {
			log.Err(err).Msg("Failed to create user")
			writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
			return
		}
		if fields != nil {
			writeFieldErrors(w, fields)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "JSON parse error")
			return
		}

		user, ok := s.data.userByUsername(req.Username)
		if !ok || !CheckPasswordHash(req.Password, user.PasswordHash) {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}

		access, err := s.issuer.CreateAccessToken(&user)
		if err != nil {
			log.Err(err).Msg("Failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
			return
		}
		refresh, err := s.refresh.Create(user.ID)
		if err != nil {
			log.Err(err).Msg("Failed to create refresh token")
			writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{Access: access, Refresh: refresh})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeBody(r, &req); err != nil || req.Refresh == "" {
			writeFieldErrors(w, map[string][]string{"refresh": {"This field is required."}})
			return
		}

		s.faultsLock.Lock()
		fail := s.failRefresh
		s.faultsLock.Unlock()

		stored, ok := s.refresh.Get(req.Refresh)
		if fail || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		user, ok := s.data.user(stored.UserID)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		access, err := s.issuer.CreateAccessToken(&user)
		if err != nil {
			log.Err(err).Msg("Failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
			return
		}
		resp := tokenResponse{Access: access}
		if s.refresh.rotate {
			s.refresh.Delete(req.Refresh)
			if resp.Refresh, err = s.refresh.Create(user.ID); err != nil {
				log.Err(err).Msg("Failed to rotate refresh token")
				writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
				return
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) profileView(u User) map[string]any {
	nested := map[string]any{"id": u.ID, "username": u.Username, "email": u.Email}
	profile := map[string]any{
		"id":          u.ID,
		"bio":         u.Bio,
		"date_joined": u.DateJoined.UTC(),
		"user":        nested,
	}
	if !s.nestedProfile {
		profile["username"] = u.Username
		profile["email"] = u.Email
	}
	return profile
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.data.user(userIDFrom(r))
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, s.profileView(user))
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := decodeBody(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "JSON parse error")
			return
		}
		if email, ok := req["email"].(string); ok {
			if _, err := mail.ParseAddress(email); err != nil {
				writeFieldErrors(w, map[string][]string{"email": {"Enter a valid email address."}})
				return
			}
		}

		user, ok := s.data.updateUser(userIDFrom(r), func(u *User) {
			if bio, ok := req["bio"].(string); ok {
				u.Bio = bio
			}
			if email, ok := req["email"].(string); ok {
				u.Email = email
			}
		})
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, s.profileView(user))
	}
}
