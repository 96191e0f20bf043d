package search

import (
	"net/http"

	"docflow/domain"
	"docflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/document-search", middleWares...)
	g.GET("", handleSearchDocuments)
}

func handleSearchDocuments(c *gin.Context) {
	query := domain.DocumentQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	details, err := SearchDocumentsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, details)
}
