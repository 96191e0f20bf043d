package docs

import (
	"net/http"

	"docflow/bizerror"
	"docflow/domain"
	"docflow/misc"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterDocumentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &documentHandler{validator: validator.New()}

	g := r.Group("/v1/documents", middleWares...)
	g.POST("", handler.handleCreateDocument)
	g.GET("", handler.handleQueryDocuments)
	g.GET(":id", handler.handleDetailDocument)

	a := r.Group("/v1/document-archives", middleWares...)
	a.POST("", handler.handleArchiveDocuments)
	a.DELETE(":id", handler.handleUnarchiveDocument)
}

type documentHandler struct {
	validator *validator.Validate
}

func (h *documentHandler) handleCreateDocument(c *gin.Context) {
	creation := domain.DocumentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := CreateDocumentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *documentHandler) handleQueryDocuments(c *gin.Context) {
	query := domain.DocumentQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	documents, err := QueryDocumentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, documents)
}

func (h *documentHandler) handleDetailDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	detail, err := DetailDocumentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *documentHandler) handleArchiveDocuments(c *gin.Context) {
	selection := domain.DocumentSelection{}
	if err := c.ShouldBindBodyWith(&selection, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := ArchiveDocumentsFunc(&selection, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *documentHandler) handleUnarchiveDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	doc, err := UnarchiveDocumentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, doc)
}
