package api

import (
	"alcyxob/fittracker/internal/repository"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PageQuery is the skip/limit pair accepted by every list endpoint.
type PageQuery struct {
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q PageQuery) Page() repository.Page {
	return repository.Page{Skip: q.Skip, Limit: q.Limit}.Normalize()
}

// bindPage reads skip/limit from the query string, aborting with 400 when invalid.
func bindPage(c *gin.Context) (repository.Page, bool) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid pagination: "+err.Error())
		return repository.Page{}, false
	}
	return q.Page(), true
}

// queryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date from the query string.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid '%s': expected RFC 3339 timestamp or YYYY-MM-DD", name))
	return nil, false
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid '%s': expected true or false", name))
		return nil, false
	}
	return &b, true
}
