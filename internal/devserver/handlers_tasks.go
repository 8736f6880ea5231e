package devserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

// taskPage is the Spring Data page shape the client decodes.
type taskPage struct {
	Content       []task.Task `json:"content"`
	Number        int         `json:"number"`
	TotalPages    int         `json:"totalPages"`
	TotalElements int         `json:"totalElements"`
	Size          int         `json:"size"`
}

// filterFromQuery reads the list query. Missing parameters take the
// dashboard defaults.
func filterFromQuery(c *gin.Context) (task.Filter, map[string]string) {
	f := task.DefaultFilter()
	fields := map[string]string{}

	intParam := func(name string, dst *int) {
		raw := c.Query(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "must be a number"
			return
		}
		*dst = n
	}
	intParam("page", &f.Page)
	intParam("size", &f.Size)

	if v := c.Query("sortBy"); v != "" {
		f.SortBy = v
	}
	if v := c.Query("sortDir"); v != "" {
		f.SortDir = v
	}
	if v := c.Query("status"); v != "" {
		st, err := task.ParseStatus(v)
		if err != nil {
			fields["status"] = err.Error()
		}
		f.Status = st
	}
	if v := c.Query("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			fields["priority"] = err.Error()
		}
		f.Priority = p
	}
	f.Search = c.Query("search")

	return f, fields
}

func (s *Server) listTasks(c *gin.Context) {
	f, fields := filterFromQuery(c)
	if len(fields) > 0 {
		validationFailed(c, fields)
		return
	}
	if err := f.Validate(); err != nil {
		invalid(c, err)
		return
	}

	tasks, total, err := s.tasks.List(c.Request.Context(), account(c).ID, f)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskPage{
		Content:       tasks,
		Number:        f.Page,
		TotalPages:    (total + f.Size - 1) / f.Size,
		TotalElements: total,
		Size:          f.Size,
	})
}

// ownedTask loads the task named by the id parameter. Only its owner and
// administrators may see it.
func (s *Server) ownedTask(c *gin.Context) (stores.OwnedTask, bool) {
	id, err := stores.ParseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Task %s not found", c.Param("id"))})
		return stores.OwnedTask{}, false
	}

	t, err := s.tasks.Get(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return stores.OwnedTask{}, false
	}

	acct := account(c)
	if t.OwnerID != acct.ID && acct.Role != auth.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have access to this task"})
		return stores.OwnedTask{}, false
	}
	return t, true
}

func bindDraft(c *gin.Context) (task.Draft, bool) {
	var d task.Draft
	if !bindJSON(c, &d) {
		return task.Draft{}, false
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		invalid(c, err)
		return task.Draft{}, false
	}
	return d, true
}

func (s *Server) getTask(c *gin.Context) {
	t, ok := s.ownedTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.Task)
}

func (s *Server) createTask(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}

	created, err := s.tasks.Create(c.Request.Context(), account(c).ID, d)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTask(c *gin.Context) {
	t, ok := s.ownedTask(c)
	if !ok {
		return
	}
	d, ok := bindDraft(c)
	if !ok {
		return
	}

	id, _ := t.ID.Int()
	updated, err := s.tasks.Update(c.Request.Context(), id, d)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTask(c *gin.Context) {
	t, ok := s.ownedTask(c)
	if !ok {
		return
	}

	id, _ := t.ID.Int()
	if err := s.tasks.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
