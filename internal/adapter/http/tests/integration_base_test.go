package tests

import (
	"os"
	"path/filepath"

	"todoapi/internal/adapter/filestore"
	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/http/handlers"
	"todoapi/internal/adapter/http/middleware"
	appservice "todoapi/internal/app/service"
	"todoapi/pkg/translator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const translationFolder = "../../../../pkg/translator/translation"

// IntegrationSuiteBase wires the full HTTP stack over a file store in a
// fresh temp directory for every test.
type IntegrationSuiteBase struct {
	suite.Suite

	DataPath string
	Store    *filestore.Store
	Router   *gin.Engine
}

func (s *IntegrationSuiteBase) SetupSuite() {
	gin.SetMode(gin.TestMode)
	translator.InitTranslator(translator.Config{
		TranslationFolder:  translationFolder,
		SupportedLanguages: []string{translator.LanguageFr, translator.LanguageEn},
	})
}

func (s *IntegrationSuiteBase) SetupTest() {
	s.DataPath = filepath.Join(s.T().TempDir(), "data", "tasks.json")

	store, err := filestore.New(s.DataPath, filestore.WithLogger(zap.NewNop()))
	s.Require().NoError(err)
	s.Store = store

	taskService := appservice.NewTaskService(store)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(zap.NewNop()))
	httpadapter.RegisterRoutes(
		router,
		handlers.NewHealthHandler(taskService, handlers.ServiceName, "test"),
		handlers.NewTaskHandler(taskService),
	)
	s.Router = router
}

// ReadDataFile returns the raw bytes currently persisted by the store.
func (s *IntegrationSuiteBase) ReadDataFile() []byte {
	data, err := os.ReadFile(s.DataPath)
	s.Require().NoError(err)
	return data
}
