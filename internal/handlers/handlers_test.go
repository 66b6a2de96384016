package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmalteam/salmal/backend/internal/service"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not found", err: service.ErrVoteNotFound, status: http.StatusNotFound, code: "VOTE_NOT_FOUND"},
		{name: "forbidden", err: service.ErrForbiddenDelete, status: http.StatusForbidden, code: "FORBIDDEN_DELETE"},
		{name: "conflict", err: service.ErrDuplicatedBookmark, status: http.StatusConflict, code: "DUPLICATED_BOOKMARK"},
		{name: "invalid", err: service.ErrInvalidEvaluationType, status: http.StatusBadRequest, code: "INVALID_EVALUATION_TYPE"},
		{name: "unauthorized", err: service.ErrInvalidToken, status: http.StatusUnauthorized, code: "INVALID_TOKEN"},
		{name: "wrapped service error", err: errors.Wrap(service.ErrDuplicatedReport, "report"), status: http.StatusConflict, code: "DUPLICATED_VOTE_REPORT"},
		{name: "upload", err: errors.Wrap(storage.ErrUpload, "put"), status: http.StatusBadGateway, code: "IMAGE_UPLOAD_FAILED"},
		{name: "unknown", err: errors.New("db exploded"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body["error"], "db exploded")
		})
	}
}

func TestPageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		ok    bool
		want  service.Page
	}{
		{query: "", ok: true, want: service.Page{}},
		{query: "cursorId=10&size=5", ok: true, want: service.Page{CursorID: 10, Size: 5}},
		{query: "cursorId=-1", ok: false},
		{query: "size=0", ok: false},
		{query: "size=ten", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/votes?"+tt.query, nil)

			page, ok := pageQuery(c)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, page)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
