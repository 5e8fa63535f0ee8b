// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vitalflow/vitalflow/auth"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/search"
)

const (
	msgSignupRequired   = "Username, email, and password are required"
	msgLoginRequired    = "Username and password are required"
	msgInvalidCreds     = "Invalid credentials"
	msgRegistryRequired = "Name, blood type, and contact are required"
	msgInvalidBloodType = "Invalid blood type"
	msgLocationRequired = "Location is required"
	msgEnterLocation    = "Please enter a location in Tamil Nadu (e.g., Chennai, Coimbatore)."
	msgServerError      = "Server error"
)

type SignupRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type NearbyRequest struct {
	Location string `json:"location" form:"location"`
}

// registerUser creates the account and returns the message to show.
func (s *Server) registerUser(req SignupRequest) (int, string) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return http.StatusBadRequest, msgSignupRequired
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("signup %q: %v", req.Username, err)

		return http.StatusInternalServerError, msgServerError
	}

	_, err = s.repo.AddUser(req.Username, req.Email, hash)

	switch {
	case errors.Is(err, bloodbank.ErrUsernameTaken):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, bloodbank.ErrEmailTaken):
		return http.StatusBadRequest, "Email already exists"
	case err != nil:
		log.Printf("signup %q: %v", req.Username, err)

		return http.StatusInternalServerError, msgServerError
	}

	return http.StatusCreated, "User registered successfully"
}

// authenticate checks the credentials and issues a token.
func (s *Server) authenticate(req LoginRequest) (string, int, string) {
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" || req.Password == "" {
		return "", http.StatusBadRequest, msgLoginRequired
	}

	user, err := s.repo.FindUser(req.Username)
	if errors.Is(err, bloodbank.ErrNotFound) {
		return "", http.StatusUnauthorized, msgInvalidCreds
	}

	if err != nil {
		log.Printf("login %q: %v", req.Username, err)

		return "", http.StatusInternalServerError, msgServerError
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return "", http.StatusUnauthorized, msgInvalidCreds
	}

	token, _, err := s.issuer.Issue(user.Username)
	if err != nil {
		log.Printf("login %q: %v", req.Username, err)

		return "", http.StatusInternalServerError, msgServerError
	}

	return token, http.StatusOK, "Login successful"
}

// registrationError maps validation failures to their message.
func registrationError(err error) (int, string) {
	switch {
	case errors.Is(err, bloodbank.ErrMissingFields):
		return http.StatusBadRequest, msgRegistryRequired
	case errors.Is(err, bloodbank.ErrInvalidBloodType):
		return http.StatusBadRequest, msgInvalidBloodType
	default:
		log.Printf("registration: %v", err)

		return http.StatusInternalServerError, msgServerError
	}
}

func (s *Server) signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgSignupRequired})

		return
	}

	status, msg := s.registerUser(req)
	if status != http.StatusCreated {
		ctx.JSON(status, gin.H{"error": msg})

		return
	}

	ctx.JSON(status, gin.H{"message": msg})
}

func (s *Server) login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgLoginRequired})

		return
	}

	token, status, msg := s.authenticate(req)
	if status != http.StatusOK {
		ctx.JSON(status, gin.H{"error": msg})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  msg,
		"token":    token,
		"username": strings.TrimSpace(req.Username),
	})
}

func (s *Server) listUsers(ctx *gin.Context) {
	users, err := s.repo.ListUsers()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if users == nil {
		users = []*bloodbank.User{}
	}

	ctx.JSON(http.StatusOK, users)
}

func (s *Server) listDonors(ctx *gin.Context) {
	donors, err := s.repo.ListDonors()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if donors == nil {
		donors = []*bloodbank.Donor{}
	}

	ctx.JSON(http.StatusOK, donors)
}

func (s *Server) addDonor(ctx *gin.Context) {
	var donor bloodbank.Donor
	if err := ctx.ShouldBindJSON(&donor); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgRegistryRequired})

		return
	}

	if err := donor.Validate(); err != nil {
		status, msg := registrationError(err)
		ctx.JSON(status, gin.H{"error": msg})

		return
	}

	if err := s.repo.AddDonor(&donor); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Donor added successfully", "id": donor.ID})
}

func (s *Server) listReceivers(ctx *gin.Context) {
	receivers, err := s.repo.ListReceivers()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if receivers == nil {
		receivers = []*bloodbank.Receiver{}
	}

	ctx.JSON(http.StatusOK, receivers)
}

func (s *Server) addReceiver(ctx *gin.Context) {
	var receiver bloodbank.Receiver
	if err := ctx.ShouldBindJSON(&receiver); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgRegistryRequired})

		return
	}

	if err := receiver.Validate(); err != nil {
		status, msg := registrationError(err)
		ctx.JSON(status, gin.H{"error": msg})

		return
	}

	if err := s.repo.AddReceiver(&receiver); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Receiver added successfully", "id": receiver.ID})
}

func (s *Server) listBloodBanks(ctx *gin.Context) {
	banks, err := s.repo.ListBloodBanks()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if banks == nil {
		banks = []*bloodbank.BloodBank{}
	}

	ctx.JSON(http.StatusOK, banks)
}

func (s *Server) searchNearby(ctx *gin.Context) {
	var req NearbyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgLocationRequired})

		return
	}

	result, err := s.nearby.Search(ctx.Request.Context(), req.Location)
	if errors.Is(err, bloodbank.ErrEmptyLocation) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgLocationRequired})

		return
	}

	if err != nil {
		log.Printf("nearby %q: %v", req.Location, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (s *Server) dashboardStats(ctx *gin.Context) {
	stats, err := bloodbank.LoadStats(s.repo)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// mapSearch runs the caller's search session and answers with the view
// it now shows.
func (s *Server) mapSearch(ctx *gin.Context) {
	var req NearbyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgEnterLocation})

		return
	}

	searcher := s.viewFor(ctx)

	view, err := searcher.Submit(ctx.Request.Context(), req.Location)

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, search.Snapshot{View: &view})
	case errors.Is(err, search.ErrEmptyInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgEnterLocation})
	case errors.Is(err, search.ErrStaleResult):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "current": searcher.Snapshot()})
	case search.IsSearchFailure(err):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": search.FailureBanner, "current": searcher.Snapshot()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
