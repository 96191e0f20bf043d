package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"

	"docflow/authority"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds an authenticated session for tests.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: uid, Name: "user_" + uid.String()},
		Perms:    authority.Permissions(perms),
		Context:  context.Background(),
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
