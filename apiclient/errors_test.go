package apiclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain string body", http.StatusBadRequest, `"Group is full"`, "Group is full"},
		{"non json body", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"message field", http.StatusConflict, `{"message":"already a member","detail":"x"}`, "already a member"},
		{"detail field", http.StatusForbidden, `{"detail":"You do not have permission"}`, "You do not have permission"},
		{"error field", http.StatusBadRequest, `{"error":"bad things"}`, "bad things"},
		{
			"field errors sorted",
			http.StatusBadRequest,
			`{"username":["A user with that username already exists."],"email":["Enter a valid email address.","Too short."],"code":7}`,
			"email: Enter a valid email address., Too short.; username: A user with that username already exists.",
		},
		{"string field error", http.StatusBadRequest, `{"password":"too weak"}`, "password: too weak"},
		{"empty body", http.StatusInternalServerError, ``, "Error: 500 Internal Server Error"},
		{"non field error list", http.StatusBadRequest, `["Session date is in the past."]`, "Session date is in the past."},
		{"list of messages", http.StatusBadRequest, `["first", 3, "second"]`, "first, second"},
		{"empty list", http.StatusBadRequest, `[]`, "Error: 400 Bad Request"},
		{"object without messages", http.StatusTeapot, `{"code":7}`, "Error: 418 I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, []byte(tt.body))
			require.Equal(t, tt.want, err.Error())
			require.Equal(t, tt.status, err.Status)
		})
	}
}

func TestFieldErrorsAreKept(t *testing.T) {
	err := newAPIError(http.StatusBadRequest, []byte(`{"name":["required"]}`))
	require.Equal(t, map[string][]string{"name": {"required"}}, err.Fields)
}
