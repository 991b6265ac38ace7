package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/models/dto"
)

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/swap", func(c *gin.Context) {
		var req dto.SwapCandidatesRequest
		if !BindAndValidate(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"valid", `{"candidateA":1,"classA":"7A","candidateB":2,"classB":"7B"}`, http.StatusOK, ""},
		{"malformed json", `{"candidateA":`, http.StatusBadRequest, ""},
		{"missing class", `{"candidateA":1,"candidateB":2,"classB":"7B"}`, http.StatusBadRequest, "classA"},
		{"same class", `{"candidateA":1,"classA":"7A","candidateB":2,"classB":"7A"}`, http.StatusBadRequest, "classB"},
		{"malformed class name", `{"candidateA":1,"classA":"seven","candidateB":2,"classB":"7B"}`, http.StatusBadRequest, "classA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/swap", strings.NewReader(tt.body)))

			require.Equal(t, tt.status, rec.Code)
			if tt.field == "" {
				return
			}
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
			assert.Equal(t, tt.field, resp.Error.Field)
		})
	}
}
