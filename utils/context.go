package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey    = "userId"
	companyIDKey = "companyId"
)

// CompanyID returns the company of the authenticated caller.
func CompanyID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(companyIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

func UserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(userIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

// ParamUUID parses a path parameter, answering 400 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, 400, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
