package fakeapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerAuthRoutes(routes *gin.RouterGroup, otpLimiter gin.HandlerFunc) {
	routes.POST("/login", s.login)
	routes.POST("/request-otp", otpLimiter, s.requestOTP)
	routes.POST("/verify-otp", s.verifyOTP)
	routes.POST("/logout", s.logout)
	routes.GET("/me", AuthRequired(s.jwt), s.me)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, ok := s.store.userByPhone(req.PhoneNumber)
	if !ok || u.PasswordHash == "" || !CheckPasswordHash(req.Password, u.PasswordHash) {
		s.log.Debugw("login rejected", "phone", maskPhone(req.PhoneNumber))
		abortDetail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if u.Role != req.Role {
		abortDetail(c, http.StatusForbidden, "Access denied for role "+req.Role)
		return
	}

	token, err := s.jwt.GenerateToken(u, "")
	if err != nil {
		s.log.Errorw("cannot sign token", "err", err)
		abortDetail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         u.response(),
		"role":         u.Role,
	})
}

func (s *Server) requestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cmp, ok := s.store.complaint(req.ComplaintID)
	if !ok || cmp.VictimPhone != req.PhoneNumber {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	}

	code, err := generateOTP()
	if err != nil {
		s.log.Errorw("cannot generate otp", "err", err)
		abortDetail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.store.putOTP(req.PhoneNumber, req.ComplaintID, otp{Code: code, ExpiresAt: s.now().Add(otpTTL)})
	s.log.Debugw("otp issued", "complaint_id", req.ComplaintID, "phone", maskPhone(req.PhoneNumber), "code", code)

	c.JSON(http.StatusOK, gin.H{
		"message":    "OTP sent to your phone",
		"expires_in": int(otpTTL.Seconds()),
		"phone":      maskPhone(req.PhoneNumber),
	})
}

func (s *Server) verifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !s.store.consumeOTP(req.PhoneNumber, req.ComplaintID, req.OTPCode, s.now()) {
		abortDetail(c, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}

	victim, ok := s.store.userByPhone(req.PhoneNumber)
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}
	token, err := s.jwt.GenerateToken(victim, req.ComplaintID)
	if err != nil {
		s.log.Errorw("cannot sign token", "err", err)
		abortDetail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"complaint_id": req.ComplaintID,
	})
}

// logout revokes the presented token, if any. It succeeds either way.
func (s *Server) logout(c *gin.Context) {
	if claims, ok := bearerClaims(c, s.jwt); ok {
		s.jwt.Revoke(claims)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) me(c *gin.Context) {
	claims := c.MustGet(claimsKey).(*jwtClaims)

	u, ok := s.store.userByID(claims.UserID)
	if !ok {
		u, ok = s.store.userByPhone(claims.Phone)
	}
	if !ok {
		abortDetail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, u.response())
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return phone[:2] + "****" + phone[len(phone)-2:]
}
