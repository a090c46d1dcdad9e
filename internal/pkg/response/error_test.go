package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
		wantMsg  string
	}{
		{"validation", apperror.Validation("guests is required"), http.StatusBadRequest, "validation", "guests is required"},
		{"not found", apperror.NotFound("room not found"), http.StatusNotFound, "not_found", "room not found"},
		{"conflict", apperror.Conflict("booking is already cancelled"), http.StatusConflict, "conflict", "booking is already cancelled"},
		{"forbidden", apperror.Forbidden("permission denied"), http.StatusForbidden, "forbidden", "permission denied"},
		{"store hides cause", apperror.Store(errors.New("dial tcp"), "failed"), http.StatusInternalServerError, "store", "internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "store", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestNewPageResponseNeverNull(t *testing.T) {
	resp := NewPageResponse[string](nil, pagination.Info{Page: 1, Limit: 10})
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
}
