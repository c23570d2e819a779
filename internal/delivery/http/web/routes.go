package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Route struct {
	Methods []string
	Path    string
	Handler gin.HandlerFunc
}

// Routes is the complete routing table of the application.
func Routes(h Handler) []Route {
	getPost := []string{http.MethodGet, http.MethodPost}
	return []Route{
		{getPost, "/", h.HandleHome},
		{getPost, "/tasks/", h.HandleTaskList},
		{getPost, "/task/:id/edit/", h.HandleEditTask},
		{getPost, "/task/:id/delete/", h.HandleDeleteTask},
		{[]string{http.MethodGet}, "/task/:id/toggle-done/", h.HandleToggleTaskDone},
		{[]string{http.MethodPost}, "/task/reorder/", h.HandleReorderTasks},
		{[]string{http.MethodGet}, "/healthz", h.HandleHealth},
	}
}

// RegisterRoutes binds every route for all methods so that AllowMethods,
// not the router, decides which methods a path accepts.
func RegisterRoutes(router gin.IRouter, h Handler) {
	for _, route := range Routes(h) {
		router.Any(route.Path, AllowMethods(route.Methods...), route.Handler)
	}
}

// NewRouter builds the gin engine serving the task pages.
func NewRouter(logger zerolog.Logger, h Handler) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)
	RegisterRoutes(router, h)
	return router, nil
}
