package devserver

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

type createUserRequest struct {
	Username string    `json:"username" binding:"required,min=3"`
	Name     string    `json:"name"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	Role     auth.Role `json:"role"`
}

type updateUserRequest struct {
	Name  string    `json:"name" binding:"required"`
	Email string    `json:"email" binding:"required,email"`
	Role  auth.Role `json:"role"`
}

// reportHeader is the first row of the CSV task report.
var reportHeader = []string{"ID", "Title", "Status", "Priority", "AssignedTo"}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	adminOK(c, http.StatusOK, users)
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.internalError(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Username
	}

	acct, err := s.users.Create(c.Request.Context(), stores.NewAccount{
		Username:     strings.TrimSpace(req.Username),
		Name:         name,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}

	s.log.Info().Ctx(c.Request.Context()).Str("user", acct.Username).Msg("user created")
	adminOK(c, http.StatusCreated, acct.User())
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := stores.ParseID(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := s.users.Update(c.Request.Context(), id, user.Update{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  req.Role,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	adminOK(c, http.StatusOK, updated)
}

// deleteUser removes an account and its tasks. Administrators cannot
// delete themselves.
func (s *Server) deleteUser(c *gin.Context) {
	id, err := stores.ParseID(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if id == account(c).ID {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "You cannot delete your own account"})
		return
	}

	if err := s.users.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}

	s.log.Info().Ctx(c.Request.Context()).Int64("user_id", id).Msg("user deleted")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

func (s *Server) adminStats(c *gin.Context) {
	stats, err := s.tasks.AdminStats(c.Request.Context(), s.now())
	if err != nil {
		s.internalError(c, err)
		return
	}
	adminOK(c, http.StatusOK, stats)
}

// downloadReport streams every task as CSV.
func (s *Server) downloadReport(c *gin.Context) {
	tasks, err := s.tasks.All(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}

	filename := fmt.Sprintf("tasks-report-%s.csv", s.now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(reportHeader); err != nil {
		s.log.Warn().Err(err).Msg("write report")
		return
	}
	for _, t := range tasks {
		row := []string{t.ID.String(), t.Title, string(t.Status), string(t.Priority), t.AssignedToUsername}
		if err := w.Write(row); err != nil {
			s.log.Warn().Err(err).Msg("write report")
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn().Err(err).Msg("write report")
	}
}
