package devserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) getSettings(c *gin.Context) {
	st, err := s.settings.Get(c.Request.Context(), account(c).ID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) setEmailNotifications(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		validationFailed(c, map[string]string{"enabled": "must be true or false"})
		return
	}

	st, err := s.settings.SetEmailNotifications(c.Request.Context(), account(c).ID, enabled)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
