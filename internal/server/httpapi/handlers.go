package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/filevault/internal/common"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type fileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := s.users.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
	case errors.Is(err, common.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Username and password must not be empty")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, "Username already registered")
	default:
		s.logger.Error(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleToken implements the password grant: credentials arrive as form
// fields and a bearer token comes back. Bad credentials of any kind produce
// one undifferentiated 401.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.users.Login(r.Context(), username, password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: token.AccessToken,
			TokenType:   token.TokenType,
		})
	case errors.Is(err, common.ErrorUnauthorized):
		writeUnauthorized(w, "Incorrect username or password")
	default:
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "Could not validate credentials")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	ctx, cancel := s.requestContext(r)
	defer cancel()

	rec, err := s.files.Put(ctx, user.UserName, header.Filename, file)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"info": "File '" + rec.LogicalName + "' saved.",
			"user": user.UserName,
		})
	case errors.Is(err, common.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid file name")
	case errors.Is(err, common.ErrTimeout):
		writeError(w, http.StatusServiceUnavailable, "Storage timeout")
	default:
		s.logger.Error(r.Context(), "upload failed", "error", err, "user", user.UserName)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "Could not validate credentials")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	records, err := s.files.List(ctx, user.UserName)
	switch {
	case err == nil:
		files := make([]fileInfo, 0, len(records))
		for _, rec := range records {
			files = append(files, fileInfo{Name: rec.LogicalName, Size: rec.SizeBytes})
		}
		writeJSON(w, http.StatusOK, map[string][]fileInfo{"files": files})
	case errors.Is(err, common.ErrTimeout):
		writeError(w, http.StatusServiceUnavailable, "Storage timeout")
	default:
		s.logger.Error(r.Context(), "list failed", "error", err, "user", user.UserName)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
