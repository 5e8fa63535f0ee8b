// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalflow/vitalflow/auth"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/search"
	"github.com/vitalflow/vitalflow/spatial"
)

// pageData is passed to every template. Pages fill only what they show.
type pageData struct {
	Title   string
	Session *auth.Session
	Success string
	Error   string

	BloodTypes []bloodbank.BloodType
	Cities     []string
	Donor      bloodbank.Donor
	Receiver   bloodbank.Receiver
	Donors     []*bloodbank.Donor
	Receivers  []*bloodbank.Receiver
	Username   string

	Stats    bloodbank.Stats
	StatRows []statRow

	Term   string
	Banner string
	View   *search.MapView
	Center spatial.Point
	Zoom   int
}

type statRow struct {
	BloodType string
	Donated   int
	Received  int
}

func (s *Server) render(ctx *gin.Context, status int, name string, data *pageData) {
	data.Session = auth.SessionFrom(ctx)
	ctx.HTML(status, name, data)
}

func (s *Server) homeView(ctx *gin.Context) {
	s.render(ctx, http.StatusOK, "home.html", &pageData{Title: "Home"})
}

func (s *Server) staticView(name, title string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s.render(ctx, http.StatusOK, name, &pageData{Title: title})
	}
}

func (s *Server) loginView(ctx *gin.Context) {
	data := &pageData{Title: "Login"}
	if ctx.Query("registered") != "" {
		data.Success = "Signup successful! Please log in."
	}

	s.render(ctx, http.StatusOK, "login.html", data)
}

func (s *Server) loginSubmit(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		s.render(ctx, http.StatusBadRequest, "login.html", &pageData{Title: "Login", Error: msgLoginRequired})

		return
	}

	token, status, msg := s.authenticate(req)
	if status != http.StatusOK {
		s.render(ctx, status, "login.html", &pageData{Title: "Login", Error: msg, Username: req.Username})

		return
	}

	s.issuer.SetCookie(ctx, token)
	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) signupView(ctx *gin.Context) {
	s.render(ctx, http.StatusOK, "signup.html", &pageData{Title: "Signup"})
}

func (s *Server) signupSubmit(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBind(&req); err != nil {
		s.render(ctx, http.StatusBadRequest, "signup.html", &pageData{Title: "Signup", Error: msgSignupRequired})

		return
	}

	status, msg := s.registerUser(req)
	if status != http.StatusCreated {
		s.render(ctx, status, "signup.html", &pageData{Title: "Signup", Error: msg, Username: req.Username})

		return
	}

	ctx.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (s *Server) logout(ctx *gin.Context) {
	auth.ClearCookie(ctx)
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) donorsPage(ctx *gin.Context, status int, data *pageData) {
	donors, err := s.repo.ListDonors()
	if err != nil {
		log.Printf("listing donors: %v", err)

		data.Error = "Failed to load donors."
	}

	data.Title = "Donors"
	data.Donors = donors
	data.BloodTypes = bloodbank.BloodTypes
	data.Cities = bloodbank.Cities

	s.render(ctx, status, "donors.html", data)
}

func (s *Server) donorsView(ctx *gin.Context) {
	data := &pageData{}
	if ctx.Query("status") == "success" {
		data.Success = "Donor added successfully!"
	}

	s.donorsPage(ctx, http.StatusOK, data)
}

func (s *Server) donorsSubmit(ctx *gin.Context) {
	donor := bloodbank.Donor{
		Name:         ctx.PostForm("name"),
		BloodType:    bloodbank.BloodType(ctx.PostForm("bloodType")),
		Contact:      ctx.PostForm("contact"),
		City:         ctx.PostForm("city"),
		LastDonation: ctx.PostForm("lastDonation"),
	}

	err := donor.Validate()
	if err == nil {
		err = s.repo.AddDonor(&donor)
	}

	if err != nil {
		status, msg := registrationError(err)
		s.donorsPage(ctx, status, &pageData{Error: "Failed to add donor. " + msg + ".", Donor: donor})

		return
	}

	ctx.Redirect(http.StatusSeeOther, "/donors?status=success")
}

func (s *Server) receiverPage(ctx *gin.Context, status int, data *pageData) {
	receivers, err := s.repo.ListReceivers()
	if err != nil {
		log.Printf("listing receivers: %v", err)

		data.Error = "Failed to load receivers."
	}

	data.Title = "Receivers"
	data.Receivers = receivers
	data.BloodTypes = bloodbank.BloodTypes

	s.render(ctx, status, "receiver.html", data)
}

func (s *Server) receiverView(ctx *gin.Context) {
	data := &pageData{}
	if ctx.Query("status") == "success" {
		data.Success = "Receiver added successfully!"
	}

	s.receiverPage(ctx, http.StatusOK, data)
}

func (s *Server) receiverSubmit(ctx *gin.Context) {
	receiver := bloodbank.Receiver{
		Name:         ctx.PostForm("name"),
		BloodType:    bloodbank.BloodType(ctx.PostForm("bloodType")),
		Contact:      ctx.PostForm("contact"),
		LastReceived: ctx.PostForm("lastReceived"),
	}

	err := receiver.Validate()
	if err == nil {
		err = s.repo.AddReceiver(&receiver)
	}

	if err != nil {
		status, msg := registrationError(err)
		s.receiverPage(ctx, status, &pageData{Error: "Failed to add receiver. " + msg + ".", Receiver: receiver})

		return
	}

	ctx.Redirect(http.StatusSeeOther, "/receiver?status=success")
}

func (s *Server) dashboardView(ctx *gin.Context) {
	stats, err := bloodbank.LoadStats(s.repo)
	if err != nil {
		log.Printf("loading stats: %v", err)
		s.render(ctx, http.StatusInternalServerError, "dashboard.html", &pageData{
			Title: "Dashboard",
			Error: "Failed to load dashboard data.",
		})

		return
	}

	rows := make([]statRow, len(stats.Labels))
	for i, label := range stats.Labels {
		rows[i] = statRow{BloodType: label, Donated: stats.Donated[i], Received: stats.Received[i]}
	}

	s.render(ctx, http.StatusOK, "dashboard.html", &pageData{Title: "Dashboard", Stats: stats, StatRows: rows})
}

func (s *Server) mapPage(ctx *gin.Context, status int, data *pageData, snap search.Snapshot) {
	data.Title = "Find Nearby"
	data.View = snap.View
	data.Banner = snap.Banner
	data.Center, data.Zoom = s.fallback, search.DefaultZoom

	if snap.View != nil {
		data.Center, data.Zoom = snap.View.Center, snap.View.Zoom
	}

	s.render(ctx, status, "map.html", data)
}

func (s *Server) mapView(ctx *gin.Context) {
	snap := s.viewFor(ctx).Snapshot()

	data := &pageData{}
	if snap.View != nil {
		data.Term = snap.View.Term
	}

	s.mapPage(ctx, http.StatusOK, data, snap)
}

func (s *Server) mapSubmit(ctx *gin.Context) {
	term := ctx.PostForm("location")
	searcher := s.viewFor(ctx)

	_, err := searcher.Submit(ctx.Request.Context(), term)

	data := &pageData{Term: term}
	status := http.StatusOK

	switch {
	case err == nil, errors.Is(err, search.ErrStaleResult):
	case errors.Is(err, search.ErrEmptyInput):
		data.Error = msgEnterLocation
		status = http.StatusBadRequest
	case search.IsSearchFailure(err):
		status = http.StatusBadGateway
	default:
		log.Printf("map search %q: %v", term, err)

		data.Error = search.FailureBanner
		status = http.StatusInternalServerError
	}

	s.mapPage(ctx, status, data, searcher.Snapshot())
}
