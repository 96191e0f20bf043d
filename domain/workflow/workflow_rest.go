package workflow

import (
	"net/http"

	"docflow/account"
	"docflow/bizerror"
	"docflow/domain/worklog"
	"docflow/misc"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterWorkflowsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/documents", middleWares...)

	handler := &workflowHandler{validator: validator.New()}

	g.POST(":id/approval", handler.handleApproveDocument)
	g.POST(":id/rejection", handler.handleRejectDocument)
	g.GET(":id/workflow-logs", handler.handleQueryWorkflowLogs)
}

type workflowHandler struct {
	validator *validator.Validate
}

func (h *workflowHandler) handleApproveDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	creation := ApprovalCreation{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
	}

	doc, err := ApproveDocumentFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *workflowHandler) handleRejectDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	creation := RejectionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	sec := session.ExtractSessionFromGinContext(c)
	privileged := sec.Perms.HasRole(account.SystemAdminPermission.ID)

	doc, err := RejectDocumentFunc(id, &creation, privileged, sec)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *workflowHandler) handleQueryWorkflowLogs(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	logs, err := worklog.QueryLogsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, logs)
}
