package indices

import (
	"net/http"

	"docflow/session"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-request"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)
}

func handleIndexRequest(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	success, err := ScheduleNewSyncRunFunc(sec)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}
