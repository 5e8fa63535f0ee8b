// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the registry as a REST backend under /api and as
// server rendered pages, including the map page that drives the
// proximity search workflow.
package server

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vitalflow/vitalflow/auth"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/search"
	"github.com/vitalflow/vitalflow/spatial"
)

//go:embed templates/*.html templates/static/*
var templatesFS embed.FS

// Options carries the dependencies of a Server.
type Options struct {
	Repo   bloodbank.Repository
	Nearby *bloodbank.NearbyService
	Issuer *auth.Issuer

	// NewSearcher builds the search session of a new map view.
	NewSearcher func() *search.Searcher

	// AllowedOrigin is the only cross-origin caller allowed on /api.
	AllowedOrigin string

	// Fallback centers the map before the first search.
	Fallback spatial.Point
}

type Server struct {
	repo          bloodbank.Repository
	nearby        *bloodbank.NearbyService
	issuer        *auth.Issuer
	views         *viewStore
	allowedOrigin string
	fallback      spatial.Point
}

func NewServer(opts Options) *Server {
	return &Server{
		repo:          opts.Repo,
		nearby:        opts.Nearby,
		issuer:        opts.Issuer,
		views:         newViewStore(opts.NewSearcher, maxViews),
		allowedOrigin: opts.AllowedOrigin,
		fallback:      opts.Fallback,
	}
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"orNA": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "N/A"
			}

			return s
		},
	}).ParseFS(templatesFS, "templates/*.html"))
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(s.allowedOrigin))
	r.Use(s.issuer.Middleware())

	r.SetHTMLTemplate(loadTemplates())

	static, err := fs.Sub(templatesFS, "templates/static")
	if err != nil {
		log.Fatalf("Failed to load static assets: %v", err)
	}

	r.StaticFS("/static", http.FS(static))

	gated := auth.RequireSession("/login")

	r.GET("/", s.homeView)
	r.GET("/about", s.staticView("about.html", "About"))
	r.GET("/contact", s.staticView("contact.html", "Contact"))
	r.GET("/privacy", s.staticView("privacy.html", "Privacy Policy"))
	r.GET("/login", s.loginView)
	r.POST("/login", s.loginSubmit)
	r.GET("/signup", s.signupView)
	r.POST("/signup", s.signupSubmit)
	r.GET("/logout", s.logout)
	r.POST("/logout", s.logout)
	r.GET("/donors", gated, s.donorsView)
	r.POST("/donors", gated, s.donorsSubmit)
	r.GET("/receiver", gated, s.receiverView)
	r.POST("/receiver", gated, s.receiverSubmit)
	r.GET("/dashboard", gated, s.dashboardView)
	r.GET("/map", s.mapView)
	r.POST("/map", s.mapSubmit)

	api := r.Group("/api")
	api.POST("/signup", s.signup)
	api.POST("/login", s.login)
	api.GET("/users", auth.RequireAPISession(), s.listUsers)
	api.GET("/donors", s.listDonors)
	api.POST("/donors", s.addDonor)
	api.GET("/receivers", s.listReceivers)
	api.POST("/receivers", s.addReceiver)
	api.GET("/blood-banks", s.listBloodBanks)
	api.POST("/nearby", s.searchNearby)
	api.GET("/dashboard", s.dashboardStats)
	api.POST("/map/search", s.mapSearch)

	r.NoRoute(s.notFound)

	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) notFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})

		return
	}

	ctx.Redirect(http.StatusFound, "/")
}
