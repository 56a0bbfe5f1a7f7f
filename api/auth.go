package api

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskleaf/taskleaf/config"
	"github.com/taskleaf/taskleaf/db"
	"github.com/taskleaf/taskleaf/log"
)

const (
	// sessionCookieName is the cookie name for demo auth sessions
	sessionCookieName = "session"
	// sessionCookieMaxAge is 30 days in seconds
	sessionCookieMaxAge = 30 * 24 * 60 * 60
)

// Login handles POST /api/auth/login. This is a demo-only gate: a single
// shared password from the environment, no user accounts.
func Login(c *gin.Context) {
	cfg := config.Get()
	if !cfg.IsDemoAuth() {
		RespondError(c, http.StatusBadRequest, "Demo login is not enabled")
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !passwordMatches(body.Password, cfg.DemoPassword) {
		log.Warn().Msg("login attempt with invalid password")
		RespondError(c, http.StatusUnauthorized, "Invalid password")
		return
	}

	sessionToken := generateSessionToken()
	session, err := db.CreateSession(sessionToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		RespondError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	secure := !cfg.IsDevelopment()
	c.SetCookie(sessionCookieName, sessionToken, sessionCookieMaxAge, "/", "", secure, true)

	log.Info().Str("sessionId", session.ID[:8]+"...").Msg("login successful")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout handles POST /api/auth/logout
func Logout(c *gin.Context) {
	sessionToken, err := c.Cookie(sessionCookieName)
	if err == nil && sessionToken != "" {
		if err := db.DeleteSession(sessionToken); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// validateSession checks if the session cookie contains a valid session.
// Returns the session if valid, nil otherwise.
func validateSession(c *gin.Context) *db.Session {
	sessionToken, err := c.Cookie(sessionCookieName)
	if err != nil || sessionToken == "" {
		return nil
	}

	session, err := db.GetSession(sessionToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to get session")
		return nil
	}
	if session == nil {
		// Not found or expired
		return nil
	}

	if err := db.TouchSession(sessionToken); err != nil {
		log.Error().Err(err).Msg("failed to touch session")
	}

	return session
}

// Helper functions

func passwordMatches(given, expected string) bool {
	a := sha256.Sum256([]byte(given))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

func generateSessionToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
