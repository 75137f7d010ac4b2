package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"blog-console/cmd/console/handlers"
	"blog-console/cmd/console/middleware"
	"blog-console/cmd/console/services"
	"blog-console/cmd/console/templates"
	_ "blog-console/docs"
)

// Deps 는 라우터가 핸들러에 넘겨주는 협력 객체와 설정이다.
type Deps struct {
	Sessions *services.SessionStore
	Writer   services.PostWriter
	Assets   handlers.AssetFetcher
	Pinger   handlers.Pinger
	Uploader *services.Uploader
	Preview  *services.PreviewService

	Cards    services.CardOptions
	Composer handlers.ComposerOptions
}

func New(deps Deps) (*gin.Engine, error) {
	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	// Health check
	r.GET("/health", middleware.RequestLoggingMiddleware(), handlers.HealthHandler(deps.Pinger))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	console := r.Group("/")
	console.Use(middleware.RequestTrace(), middleware.ConsoleSession(deps.Sessions))
	{
		console.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/posts")
		})

		console.GET("/posts", handlers.ListPostsHandler(deps.Cards))
		console.POST("/posts/filter", handlers.FilterPostsHandler())
		console.POST("/posts/filter/clear", handlers.ClearFilterHandler())

		console.GET("/posts/create", handlers.NewPostFormHandler(deps.Composer))
		console.GET("/posts/update/:id", handlers.EditPostFormHandler(deps.Composer))

		console.GET("/posts/:id", handlers.PreviewPostHandler(deps.Preview))
		console.GET("/posts/:id/video", handlers.DownloadVideoHandler(deps.Assets, deps.Cards.AssetBaseURL))
		console.POST("/posts/:id/delete", handlers.DeletePostHandler(deps.Writer))

		compose := console.Group("/posts/compose/:key")
		compose.POST("", handlers.SaveDraftHandler(deps.Composer))
		compose.GET("/image", handlers.DraftImageHandler())
		compose.POST("/tags", handlers.AddTagHandler())
		compose.POST("/tags/remove", handlers.RemoveTagHandler())
		compose.POST("/categories/:cid/toggle", handlers.ToggleCategoryHandler())
		compose.POST("/categories/:cid/remove", handlers.RemoveCategoryHandler())
		compose.POST("/video", handlers.UploadVideoHandler(deps.Uploader, deps.Composer))
		compose.POST("/video/remove", handlers.RemoveVideoHandler(deps.Uploader))
	}

	// v1 routes. 쿠키 없는 호출은 세션을 남기지 않는다.
	api := r.Group("/api/v1")
	api.Use(middleware.RequestTrace(), middleware.OptionalSession(deps.Sessions))
	{
		api.GET("/posts/:id", handlers.GetPostJSONHandler())
	}

	return r, nil
}
