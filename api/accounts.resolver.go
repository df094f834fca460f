package api

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
)

type accountResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (m ApiHandler) listAccounts(c *gin.Context) {
	accounts, err := m.ReferenceDataCache.Accounts(c.Request.Context())
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to list accounts: %w", err), c)
		return
	}

	out := []accountResponse{}
	for _, a := range accounts {
		out = append(out, accountResponse{
			ID:   a.ID,
			Name: a.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	c.JSON(200, out)
}
