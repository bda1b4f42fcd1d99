package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocumentCoversRoutes(t *testing.T) {
	t.Parallel()

	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger     string                     `json:"swagger"`
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "2.0", doc.Swagger)

	for _, path := range []string{
		"/api/auth/login",
		"/api/auth/refresh",
		"/api/auth/me",
		"/api/users",
		"/api/users/{id}",
		"/api/roles/{id}/permissions",
		"/api/menus/tree",
		"/livez",
		"/readyz",
	} {
		require.Contains(t, doc.Paths, path)
	}

	require.Contains(t, doc.Definitions, "http.TokenResponse")
	require.Contains(t, doc.Definitions, "httpx.ErrorBody")
	require.Contains(t, doc.Definitions, "listq.Page-http_UserResponse")
}
