package main

import (
	"context"
	"net/http"

	"docflow/account"
	"docflow/bizerror"
	"docflow/client/es"
	"docflow/common"
	"docflow/domain"
	"docflow/domain/docs"
	"docflow/domain/workflow"
	"docflow/domain/worklog"
	"docflow/event"
	"docflow/indices"
	"docflow/indices/search"
	"docflow/infra/tracing"
	"docflow/persistence"
	"docflow/session"
	"docflow/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &account.UserPermission{},
		&domain.Document{}, &domain.Signatory{}, &domain.DocumentRecipient{}, &domain.DocumentSequence{},
		&worklog.WorkflowLog{}, &event.EventRecord{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		logrus.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	es.CreateClientFromEnv()
	event.EventHandlers = append(event.EventHandlers, indices.IndexDocumentEventHandle)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)

	secured := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, secured)
	docs.RegisterDocumentsRestAPI(engine, secured)
	workflow.RegisterWorkflowsRestAPI(engine, secured)
	search.RegisterSearchRestAPI(engine, secured)
	indices.RegisterIndicesRestAPI(engine, secured)

	if err := engine.Run(":80"); err != nil {
		panic(err)
	}
}
